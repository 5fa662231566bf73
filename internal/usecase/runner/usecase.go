package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chat-harvester/internal/application/port/input"
	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
)

var _ input.RunExecutor = (*UseCase)(nil)

const (
	DefaultSettle = 2000 * time.Millisecond
	DefaultPacing = 800 * time.Millisecond
)

// QuestionFunc extracts the question text of a row.
type QuestionFunc func(entity.Row) (string, error)

// Screenshotter captures the page when a row fails. Optional.
type Screenshotter interface {
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
}

type Config struct {
	Selectors entity.SelectorConfig
	// Settle is waited before every submission so earlier UI transitions finish.
	Settle time.Duration
	// Pacing is waited between submitted rows.
	Pacing        time.Duration
	ScreenshotDir string
}

func DefaultConfig() Config {
	return Config{
		Selectors: entity.DefaultSelectorConfig(),
		Settle:    DefaultSettle,
		Pacing:    DefaultPacing,
	}
}

type UseCase struct {
	cfg       Config
	submitter input.Submitter
	store     output.ResultStore
	view      output.RunView
	logger    output.LoggerPort
	question  QuestionFunc
	shots     Screenshotter
	now       func() time.Time
}

func New(
	cfg Config,
	submitter input.Submitter,
	store output.ResultStore,
	view output.RunView,
	logger output.LoggerPort,
	question QuestionFunc,
	shots Screenshotter,
) *UseCase {
	cfg.Selectors = cfg.Selectors.WithDefaults()
	return &UseCase{
		cfg:       cfg,
		submitter: submitter,
		store:     store,
		view:      view,
		logger:    logger,
		question:  question,
		shots:     shots,
		now:       time.Now,
	}
}

// Run processes the rows of state in order until the table is exhausted,
// the stop flag is set, or ctx is done. The stop flag is only checked
// between rows; an in-flight submission always completes.
func (uc *UseCase) Run(ctx context.Context, state *entity.RunState) error {
	log := uc.logger.WithField("run_id", state.ID)
	log.Info("Run started", "rows", len(state.Rows))
	uc.view.ShowRunStart(ctx, state.ID, len(state.Rows))
	defer func() {
		stats := state.Snapshot()
		log.Info("Run finished",
			"done", stats.Done, "failed", stats.Failed, "skipped", stats.Skipped, "stopped", stats.Stopped)
		uc.view.ShowRunEnd(ctx, stats)
	}()

	for {
		if state.Stopped() {
			log.Info("Stop requested, leaving run", "next", state.Snapshot().Next)
			return nil
		}
		row, ok := state.Current()
		if !ok {
			return nil
		}

		status, err := uc.processRow(ctx, log, row)
		if err != nil {
			return err
		}
		state.Advance(status)

		if status == entity.RowStatusSkipped {
			continue
		}
		if _, more := state.Current(); !more {
			return nil
		}
		if err := sleep(ctx, uc.cfg.Pacing); err != nil {
			return err
		}
	}
}

func (uc *UseCase) processRow(ctx context.Context, log output.LoggerPort, row entity.Row) (entity.RowStatus, error) {
	log = log.WithField("row", row.Index)

	question, err := uc.question(row)
	if err != nil {
		log.Warn("Row has no question", "error", err)
		uc.view.ShowRowError(ctx, row.Index, err)
		return entity.RowStatusFailed, nil
	}
	if question = strings.TrimSpace(question); question == "" {
		log.Debug("Skipping empty question")
		uc.view.ShowRowSkipped(ctx, row.Index, "empty question")
		return entity.RowStatusSkipped, nil
	}

	uc.view.ShowRowStart(ctx, row.Index, question)
	if err := sleep(ctx, uc.cfg.Settle); err != nil {
		return "", err
	}

	outcome, err := uc.submitter.Submit(ctx, entity.SubmissionRequest{
		Question:  question,
		Selectors: uc.cfg.Selectors,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Error("Submission failed", "error", err)
		uc.view.ShowRowError(ctx, row.Index, err)
		return entity.RowStatusFailed, nil
	}

	uc.view.ShowRowResult(ctx, row.Index, outcome)
	if !outcome.OK {
		log.Warn("Row not submitted", "reason", outcome.Reason)
		uc.captureFailure(ctx, log, row)
		return entity.RowStatusFailed, nil
	}

	rec := entity.NewResultRecord(question, outcome.Answer, uc.now())
	if err := uc.store.Append(ctx, rec); err != nil {
		return "", fmt.Errorf("persist row %d: %w", row.Index, err)
	}
	log.Info("Row answered", "via", outcome.Via.String(), "answer_len", len(outcome.Answer))
	return entity.RowStatusDone, nil
}

func (uc *UseCase) captureFailure(ctx context.Context, log output.LoggerPort, row entity.Row) {
	if uc.shots == nil || uc.cfg.ScreenshotDir == "" {
		return
	}
	shot, err := uc.shots.Screenshot(ctx)
	if err != nil {
		log.Warn("Screenshot failed", "error", err)
		return
	}
	if err := os.MkdirAll(uc.cfg.ScreenshotDir, 0o755); err != nil {
		log.Warn("Screenshot dir unavailable", "error", err)
		return
	}
	name := fmt.Sprintf("row_%04d_%s.%s", row.Index, uc.now().UTC().Format("20060102T150405"), shot.Format)
	path := filepath.Join(uc.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, shot.Data, 0o644); err != nil {
		log.Warn("Screenshot not saved", "error", err)
		return
	}
	log.Info("Failure screenshot saved", "path", path)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsInterrupted reports whether err ended a run by cancellation rather
// than by a fault.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
