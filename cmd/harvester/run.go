package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/di"
	"chat-harvester/internal/domain/entity"
	"chat-harvester/internal/infrastructure/rows"
	"chat-harvester/internal/usecase/runner"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runFlags struct {
	rowsPath  string
	url       string
	headless  bool
	serve     bool
	waitLogin bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ask every question of a row table and store the answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("url") {
				a.cfg.URL = f.url
			}
			if cmd.Flags().Changed("headless") {
				a.cfg.Browser.Headless = f.headless
			}
			if cmd.Flags().Changed("wait-login") {
				a.cfg.Run.WaitForLogin = f.waitLogin
			}
			return runHarvest(cmd.Context(), a, f)
		},
	}
	cmd.Flags().StringVarP(&f.rowsPath, "rows", "r", "", "question table (.csv, .tsv, .html)")
	cmd.Flags().StringVar(&f.url, "url", "", "chat page to open before the run")
	cmd.Flags().BoolVar(&f.headless, "headless", false, "run the browser headless")
	cmd.Flags().BoolVar(&f.serve, "serve", false, "expose the control API while running")
	cmd.Flags().BoolVar(&f.waitLogin, "wait-login", false, "pause for manual login before the first row")
	_ = cmd.MarkFlagRequired("rows")
	return cmd
}

func runHarvest(ctx context.Context, a *app, f *runFlags) error {
	table, err := rows.LoadFile(f.rowsPath, a.cfg.Rows.Options())
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	c, err := di.NewContainer(ctx, a.cfg, di.Options{RunName: "run_" + runID[:8], WithBrowser: true})
	if err != nil {
		return err
	}
	defer c.Close()

	log := c.Logger.WithField("run_id", runID)

	if a.cfg.URL != "" {
		log.Info("Opening chat page", "url", a.cfg.URL)
		if err := c.Browser.Navigate(ctx, a.cfg.URL); err != nil {
			return fmt.Errorf("open chat page: %w", err)
		}
	}
	if a.cfg.Run.WaitForLogin {
		if err := c.Console.WaitForUserAction(ctx, "Log in to the chat page if needed"); err != nil {
			return err
		}
	}

	state := entity.NewRunState(runID, table)
	c.SetCurrentRun(state)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watchSignals(gctx, state, cancel, log)
	})
	if f.serve {
		g.Go(func() error {
			return c.Server.ListenAndServe(gctx, a.cfg.Server.Addr)
		})
	}
	g.Go(func() error {
		defer cancel()
		return c.Runner.Run(gctx, state)
	})

	err = g.Wait()
	if runner.IsInterrupted(err) {
		log.Warn("Run interrupted", "next_row", state.Snapshot().Next)
		return errors.New("run interrupted")
	}
	return err
}

// watchSignals turns the first interrupt into a stop request honored at the
// next row boundary. A second interrupt, or SIGTERM, cancels the run.
func watchSignals(ctx context.Context, state *entity.RunState, cancel context.CancelFunc, log output.LoggerPort) error {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigs:
			if sig == os.Interrupt && !state.Stopped() {
				log.Warn("Interrupt received, stopping after the current row (press Ctrl+C again to abort)")
				state.Stop()
				continue
			}
			log.Warn("Aborting run", "signal", sig.String())
			cancel()
			return nil
		}
	}
}
