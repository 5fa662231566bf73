package submission

import (
	"context"
	"fmt"
	"time"

	"chat-harvester/internal/application/port/input"
	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
)

var _ input.Submitter = (*UseCase)(nil)

// UseCase runs one question through locate → inject → submit → watch.
// It keeps no state between calls.
type UseCase struct {
	page    output.PagePort
	trigger *Trigger
	watcher *Watcher
	logger  output.LoggerPort
}

func New(page output.PagePort, logger output.LoggerPort, timings Timings) *UseCase {
	return NewWithStrategies(page, logger, DefaultStrategies(timings)...)
}

func NewWithStrategies(page output.PagePort, logger output.LoggerPort, strategies ...Strategy) *UseCase {
	return &UseCase{
		page:    page,
		trigger: NewTrigger(logger, strategies...),
		watcher: NewWatcher(page, logger),
		logger:  logger,
	}
}

func (uc *UseCase) Submit(ctx context.Context, req entity.SubmissionRequest) (entity.SubmissionOutcome, error) {
	sel := req.Selectors.WithDefaults()
	start := time.Now()

	doc, err := uc.page.Document(ctx)
	if err != nil {
		return entity.SubmissionOutcome{}, fmt.Errorf("document: %w", err)
	}
	defer ReleaseAll(ctx, doc)

	inputEl, err := PickVisible(ctx, doc, sel.Inputs)
	if err != nil {
		return entity.SubmissionOutcome{}, fmt.Errorf("locate input: %w", err)
	}
	if inputEl == nil {
		uc.logger.Warn("Input surface not found", "candidates", len(sel.Inputs))
		return entity.InputNotFound(), nil
	}
	defer ReleaseAll(ctx, inputEl)

	if err := Inject(ctx, inputEl, req.Question); err != nil {
		return entity.SubmissionOutcome{}, fmt.Errorf("inject question: %w", err)
	}

	// Subscribe before firing so an answer rendered by the submission
	// itself is seen.
	watch, err := uc.watcher.Start(ctx, sel)
	if err != nil {
		return entity.SubmissionOutcome{}, fmt.Errorf("watch answers: %w", err)
	}
	defer watch.Close()

	via, err := uc.trigger.Submit(ctx, Attempt{Document: doc, Input: inputEl, Selectors: sel})
	if err != nil {
		return entity.SubmissionOutcome{}, fmt.Errorf("submit: %w", err)
	}
	if !via.Verified() {
		uc.logger.Warn("Submission unverified, keyboard fallback used")
	}
	uc.logger.Debug("Question submitted", "via", via)

	target, err := watch.Await(ctx)
	if err != nil {
		return entity.SubmissionOutcome{}, fmt.Errorf("wait for answer: %w", err)
	}
	defer ReleaseAll(ctx, target)

	answer, err := AnswerText(ctx, target)
	if err != nil {
		uc.logger.Warn("Reading final answer failed", "error", err)
		answer = ""
	}

	uc.logger.Info("Answer captured",
		"via", via, "chars", len(answer), "duration_ms", time.Since(start).Milliseconds())

	return entity.SubmissionOutcome{OK: true, Via: via, Answer: answer}, nil
}
