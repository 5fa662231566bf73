package submission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
)

// watchState lives for exactly one Watch.
type watchState struct {
	lastText string
	target   output.Element
	started  time.Time
}

// observe records text and reports whether it changed. Only a change may
// (re)arm the stabilization timer.
func (s *watchState) observe(ctx context.Context, el output.Element, text string) bool {
	// The previous handle is superseded even when it names the same node.
	ReleaseAll(ctx, s.target)
	s.target = el
	if text == s.lastText {
		return false
	}
	s.lastText = text
	return true
}

type Watcher struct {
	page   output.PagePort
	logger output.LoggerPort
}

func NewWatcher(page output.PagePort, logger output.LoggerPort) *Watcher {
	return &Watcher{page: page, logger: logger}
}

// Watch is a live mutation subscription. Mutations that happen after Start
// returns are buffered until Await drains them, so a submission fired in
// between is never missed.
type Watch struct {
	w         *Watcher
	sel       entity.SelectorConfig
	doc       output.Node
	mutations <-chan struct{}
	dispose   func()
	state     *watchState
}

// Start subscribes to page mutations. The caller must Close the returned
// Watch on every path.
func (w *Watcher) Start(ctx context.Context, sel entity.SelectorConfig) (*Watch, error) {
	sel = sel.WithDefaults()

	doc, err := w.page.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}

	mutations, dispose, err := w.page.Observe(ctx)
	if err != nil {
		ReleaseAll(ctx, doc)
		return nil, fmt.Errorf("observe mutations: %w", err)
	}

	return &Watch{
		w:         w,
		sel:       sel,
		doc:       doc,
		mutations: mutations,
		dispose:   dispose,
		state:     &watchState{started: time.Now()},
	}, nil
}

// Close releases the subscription. Safe to call more than once.
func (wt *Watch) Close() {
	if wt.dispose != nil {
		wt.dispose()
		wt.dispose = nil
		ReleaseAll(context.Background(), wt.doc)
	}
}

// Await blocks until the latest assistant message stops changing for
// StabilizeAfter, or HardTimeout elapses. On timeout it returns whatever
// the target resolver finds at that moment, possibly nil. The caller owns
// the returned handle.
func (wt *Watch) Await(ctx context.Context) (output.Element, error) {
	w, sel, doc, state := wt.w, wt.sel, wt.doc, wt.state
	mutations := wt.mutations

	hard := time.NewTimer(sel.HardTimeout)
	defer hard.Stop()

	var settle *time.Timer
	var settled <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			ReleaseAll(ctx, state.target)
			return nil, ctx.Err()

		case <-hard.C:
			target, err := ResolveTarget(ctx, doc, sel)
			if err != nil {
				w.logger.Debug("Target lookup failed at timeout", "error", err)
				target = state.target
			} else {
				ReleaseAll(ctx, state.target)
			}
			w.logger.Warn("Completion wait hit hard timeout",
				"timeout", sel.HardTimeout, "found", target != nil)
			return target, nil

		case <-settled:
			w.logger.Debug("Answer stabilized",
				"elapsed", time.Since(state.started), "chars", len(state.lastText))
			return state.target, nil

		case _, ok := <-mutations:
			if !ok {
				mutations = nil
				continue
			}
			if !w.tick(ctx, doc, sel, state) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(sel.StabilizeAfter)
			} else {
				settle.Reset(sel.StabilizeAfter)
			}
			settled = settle.C
		}
	}
}

// tick handles one mutation batch and reports whether the timer must restart.
func (w *Watcher) tick(ctx context.Context, doc output.Node, sel entity.SelectorConfig, state *watchState) bool {
	target, err := ResolveTarget(ctx, doc, sel)
	if err != nil {
		w.logger.Debug("Target lookup failed", "error", err)
		return false
	}
	if target == nil {
		return false
	}

	if sel.StreamingClass != "" {
		streaming, err := target.InsideOf(ctx, "."+sel.StreamingClass)
		if err == nil && streaming {
			ReleaseAll(ctx, target)
			return false
		}
	}

	text, err := target.InnerText(ctx)
	if err != nil {
		w.logger.Debug("Reading answer text failed", "error", err)
		ReleaseAll(ctx, target)
		return false
	}
	return state.observe(ctx, target, text)
}

// ResolveTarget finds the latest assistant message: the last match of the
// first assistant selector that matches anything inside the messages
// container, or inside the whole document when no container is found. The
// caller owns the returned handle.
func ResolveTarget(ctx context.Context, doc output.Node, sel entity.SelectorConfig) (output.Element, error) {
	var scope output.Node = doc
	container, err := DeepQueryFirst(ctx, doc, sel.MessagesContainer)
	if err != nil {
		return nil, err
	}
	if container != nil {
		defer ReleaseAll(ctx, container)
		scope = container
	}

	for _, s := range sel.AssistantMessages {
		matches, err := DeepQueryAll(ctx, scope, s)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			last := len(matches) - 1
			ReleaseAll(ctx, matches[:last]...)
			return matches[last], nil
		}
	}
	return nil, nil
}

// AnswerText extracts the trimmed rendered text of the resolved element.
func AnswerText(ctx context.Context, el output.Element) (string, error) {
	if el == nil {
		return "", nil
	}
	text, err := el.InnerText(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
