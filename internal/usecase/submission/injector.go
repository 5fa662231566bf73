package submission

import (
	"context"
	"fmt"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
)

// Inject makes value the content of el and fires the events a framework
// listens to, so its own state (for example "compose box is non-empty")
// follows. A nil element is ignored.
func Inject(ctx context.Context, el output.Element, value string) error {
	if el == nil {
		return nil
	}

	if err := el.Focus(ctx); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	if err := el.ScrollIntoView(ctx); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}

	editable, err := el.IsEditable(ctx)
	if err != nil {
		return fmt.Errorf("inspect input: %w", err)
	}
	if editable {
		return injectEditable(ctx, el, value)
	}
	return injectControl(ctx, el, value)
}

func injectEditable(ctx context.Context, el output.Element, value string) error {
	if err := el.ClearContent(ctx); err != nil {
		return fmt.Errorf("clear content: %w", err)
	}
	if err := dispatchAll(ctx, el,
		entity.InputEvent("beforeinput", "deleteContentBackward", nil),
		entity.InputEvent("input", "deleteContentBackward", nil),
	); err != nil {
		return err
	}

	if err := el.SetTextContent(ctx, value); err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	if err := el.CaretToEnd(ctx); err != nil {
		return fmt.Errorf("move caret: %w", err)
	}

	return dispatchAll(ctx, el,
		entity.InputEvent("beforeinput", "insertText", &value),
		entity.InputEvent("input", "insertText", &value),
	)
}

func injectControl(ctx context.Context, el output.Element, value string) error {
	if err := el.SetNativeValue(ctx, value); err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	return dispatchAll(ctx, el,
		entity.PlainEvent("input", false),
		entity.PlainEvent("change", false),
	)
}

func dispatchAll(ctx context.Context, el output.Element, events ...entity.DOMEvent) error {
	for _, ev := range events {
		if _, err := el.Dispatch(ctx, ev); err != nil {
			return fmt.Errorf("dispatch %s: %w", ev.Type, err)
		}
	}
	return nil
}
