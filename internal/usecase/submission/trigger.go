package submission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
)

var ErrNotSubmitted = errors.New("no submission strategy succeeded")

const clickInset = 2.0

type Timings struct {
	CtrlEnterDelay  time.Duration
	MetaEnterDelay  time.Duration
	RetryClickDelay time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		CtrlEnterDelay:  30 * time.Millisecond,
		MetaEnterDelay:  30 * time.Millisecond,
		RetryClickDelay: 120 * time.Millisecond,
	}
}

// Attempt carries what a strategy needs to deliver one question.
type Attempt struct {
	Document  output.Node
	Input     output.Element
	Selectors entity.SelectorConfig
}

// Strategy is one way of simulating the user pressing "send".
type Strategy interface {
	Method() entity.SubmitMethod
	Try(ctx context.Context, a Attempt) (bool, error)
}

// DefaultStrategies is the priority table: button, form, keyboard.
func DefaultStrategies(t Timings) []Strategy {
	button := ButtonStrategy{}
	return []Strategy{
		button,
		FormStrategy{},
		KeyboardStrategy{Timings: t, Retry: button},
	}
}

type Trigger struct {
	strategies []Strategy
	logger     output.LoggerPort
}

func NewTrigger(logger output.LoggerPort, strategies ...Strategy) *Trigger {
	return &Trigger{strategies: strategies, logger: logger}
}

// Submit runs the strategies in order and stops at the first one that
// appears to have worked.
func (t *Trigger) Submit(ctx context.Context, a Attempt) (entity.SubmitMethod, error) {
	for _, s := range t.strategies {
		ok, err := s.Try(ctx, a)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			t.logger.Warn("Submit strategy failed", "method", s.Method(), "error", err)
			continue
		}
		if ok {
			return s.Method(), nil
		}
		t.logger.Debug("Submit strategy not applicable", "method", s.Method())
	}
	return "", ErrNotSubmitted
}

type ButtonStrategy struct{}

func (ButtonStrategy) Method() entity.SubmitMethod { return entity.SubmitViaButton }

func (ButtonStrategy) Try(ctx context.Context, a Attempt) (bool, error) {
	btn, err := PickVisible(ctx, a.Document, a.Selectors.SubmitButtons)
	if err != nil || btn == nil {
		return false, err
	}
	defer ReleaseAll(ctx, btn)

	rect, err := btn.Rect(ctx)
	if err != nil {
		return false, fmt.Errorf("button rect: %w", err)
	}
	x := rect.Left + math.Min(clickInset, rect.Width/2)
	y := rect.Top + math.Min(clickInset, rect.Height/2)

	if err := dispatchAll(ctx, btn,
		entity.PointerAt(entity.EventPointer, "pointerdown", x, y, 1),
		entity.PointerAt(entity.EventMouse, "mousedown", x, y, 1),
		entity.PointerAt(entity.EventPointer, "pointerup", x, y, 0),
		entity.PointerAt(entity.EventMouse, "mouseup", x, y, 0),
	); err != nil {
		return false, err
	}
	if err := btn.Click(ctx); err != nil {
		return false, fmt.Errorf("click: %w", err)
	}
	return true, nil
}

type FormStrategy struct{}

func (FormStrategy) Method() entity.SubmitMethod { return entity.SubmitViaForm }

func (FormStrategy) Try(ctx context.Context, a Attempt) (bool, error) {
	var form output.Element
	if a.Input != nil {
		f, err := a.Input.ClosestForm(ctx)
		if err != nil {
			return false, fmt.Errorf("closest form: %w", err)
		}
		form = f
	}
	if form == nil {
		f, err := PickVisible(ctx, a.Document, a.Selectors.Forms)
		if err != nil {
			return false, err
		}
		form = f
	}
	if form == nil {
		return false, nil
	}
	defer ReleaseAll(ctx, form)

	for _, method := range []string{"requestSubmit", "submit"} {
		called, err := form.CallMethod(ctx, method)
		if err != nil {
			return false, fmt.Errorf("form %s: %w", method, err)
		}
		if called {
			return true, nil
		}
	}

	return form.Dispatch(ctx, entity.PlainEvent("submit", true))
}

// KeyboardStrategy presses Enter plain, with ctrl and with meta to cover the
// usual send bindings, then retries the button once. It cannot observe
// whether the page took the keystroke, so it always reports success.
type KeyboardStrategy struct {
	Timings Timings
	Retry   Strategy
}

func (KeyboardStrategy) Method() entity.SubmitMethod { return entity.SubmitViaKeyboard }

func (k KeyboardStrategy) Try(ctx context.Context, a Attempt) (bool, error) {
	if a.Input == nil {
		return false, nil
	}

	if _, err := a.Input.Dispatch(ctx, entity.InputEvent("beforeinput", "insertParagraph", nil)); err != nil {
		return false, fmt.Errorf("dispatch beforeinput: %w", err)
	}
	if err := pressEnter(ctx, a.Input, false, false); err != nil {
		return false, err
	}

	if err := sleep(ctx, k.Timings.CtrlEnterDelay); err != nil {
		return false, err
	}
	if err := pressEnter(ctx, a.Input, true, false); err != nil {
		return false, err
	}

	if err := sleep(ctx, k.Timings.MetaEnterDelay); err != nil {
		return false, err
	}
	if err := pressEnter(ctx, a.Input, false, true); err != nil {
		return false, err
	}

	if k.Retry != nil {
		if err := sleep(ctx, k.Timings.RetryClickDelay); err != nil {
			return false, err
		}
		_, _ = k.Retry.Try(ctx, a)
	}

	return true, nil
}

func pressEnter(ctx context.Context, el output.Element, ctrl, meta bool) error {
	return dispatchAll(ctx, el,
		entity.EnterKey("keydown", ctrl, meta),
		entity.EnterKey("keypress", ctrl, meta),
		entity.EnterKey("keyup", ctrl, meta),
	)
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
