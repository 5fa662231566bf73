package di

import (
	"context"
	"fmt"
	"sync/atomic"

	"chat-harvester/internal/application/port/input"
	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
	"chat-harvester/internal/infrastructure/browser/rod"
	"chat-harvester/internal/infrastructure/config"
	"chat-harvester/internal/infrastructure/httpapi"
	"chat-harvester/internal/infrastructure/logger"
	"chat-harvester/internal/infrastructure/rows"
	"chat-harvester/internal/infrastructure/store"
	"chat-harvester/internal/infrastructure/userinteraction"
	"chat-harvester/internal/usecase/probe"
	"chat-harvester/internal/usecase/runner"
	"chat-harvester/internal/usecase/submission"
)

type Container struct {
	Config  *config.Config
	Logger  output.LoggerPort
	Store   output.ResultStore
	Console *userinteraction.Console
	Server  *httpapi.Server

	// Set only when the container was built with a browser.
	Browser   output.BrowserPort
	Submitter input.Submitter
	Runner    input.RunExecutor
	Probe     *probe.UseCase

	current atomic.Pointer[entity.RunState]
}

type Options struct {
	// RunName names the log file of this process.
	RunName     string
	WithBrowser bool
}

func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logger.Level
	logCfg.Console = cfg.Logger.Console
	logCfg.Dir = cfg.Logger.Dir
	logCfg.RunName = opts.RunName

	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  log,
		Console: userinteraction.NewConsole(),
	}

	c.Store, err = store.Open(ctx, cfg.Store)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}
	c.Server = httpapi.NewServer(c.Store, log.WithField("component", "http"), c.CurrentRun)

	if !opts.WithBrowser {
		return c, nil
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.Browser.Headless
	browserCfg.NoSandbox = cfg.Browser.NoSandbox
	browserCfg.Stealth = cfg.Browser.Stealth
	browserCfg.UserDataDir = cfg.Browser.UserDataDir
	browserCfg.ControlURL = cfg.Browser.ControlURL
	browserCfg.Timeout = cfg.Browser.Timeout
	browserCfg.SlowMotion = cfg.Browser.SlowMotion

	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	c.Browser = browser

	c.Probe = probe.New(browser, log.WithField("component", "probe"))
	c.Submitter = submission.New(browser, log.WithField("component", "submission"), submission.DefaultTimings())

	rowOpts := cfg.Rows.Options()
	c.Runner = runner.New(
		runner.Config{
			Selectors:     cfg.Selectors,
			Settle:        cfg.Run.Settle,
			Pacing:        cfg.Run.Pacing,
			ScreenshotDir: cfg.Run.ScreenshotDir,
		},
		c.Submitter,
		c.Store,
		c.Console,
		log,
		func(row entity.Row) (string, error) { return rows.Question(row, rowOpts) },
		browser,
	)
	return c, nil
}

// SetCurrentRun publishes the run the control surface reports on.
func (c *Container) SetCurrentRun(state *entity.RunState) {
	c.current.Store(state)
}

func (c *Container) CurrentRun() *entity.RunState {
	return c.current.Load()
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger.Warn("Failed to close result store", "error", err)
		}
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
