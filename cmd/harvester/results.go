package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"chat-harvester/internal/di"
	"chat-harvester/internal/infrastructure/export"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored answers as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := di.NewContainer(cmd.Context(), a.cfg, di.Options{RunName: "export"})
			if err != nil {
				return err
			}
			defer c.Close()

			records, err := c.Store.LoadAll(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, format, records); err != nil {
				return err
			}
			c.Logger.Info("Results exported", "format", format, "records", len(records), "out", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV, "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := di.NewContainer(cmd.Context(), a.cfg, di.Options{RunName: "clear"})
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Results cleared.")
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored answers and status over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			c, err := di.NewContainer(cmd.Context(), a.cfg, di.Options{RunName: "serve"})
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.Server.ListenAndServe(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	return cmd
}
