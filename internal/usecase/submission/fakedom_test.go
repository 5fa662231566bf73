package submission

import (
	"context"
	"sync"
	"time"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
)

// fakePage is an in-memory DOM good enough to drive the engine without a
// browser. Elements match a selector when it is listed in their matches.
type fakePage struct {
	mu       sync.Mutex
	doc      *fakeRoot
	start    time.Time
	events   []firedEvent
	sub      chan struct{}
	disposed int
	observed int
	failDoc  error

	// issued counts handles handed out, released counts Release calls.
	issued   int
	released int
}

type firedEvent struct {
	Target string
	Event  entity.DOMEvent
	At     time.Duration
}

type fakeRoot struct {
	page     *fakePage
	children []*fakeEl
}

type fakeEl struct {
	page     *fakePage
	name     string
	matches  []string
	parent   *fakeEl
	children []*fakeEl
	shadow   *fakeRoot

	visible  bool
	visErr   error
	rect     entity.Rect
	editable bool
	text     string
	value    string
	classes  []string
	focused  bool
	clicked  int

	methods       map[string]bool
	cancelsSubmit bool
	calls         []string
	onClick       func()
}

var (
	_ output.PagePort = (*fakePage)(nil)
	_ output.Node     = (*fakeRoot)(nil)
	_ output.Element  = (*fakeEl)(nil)
)

func newFakePage() *fakePage {
	p := &fakePage{start: time.Now()}
	p.doc = &fakeRoot{page: p}
	return p
}

func (p *fakePage) el(name string, matches ...string) *fakeEl {
	return &fakeEl{
		page:    p,
		name:    name,
		matches: matches,
		visible: true,
		rect:    entity.Rect{Left: 10, Top: 20, Width: 80, Height: 30},
		methods: map[string]bool{},
	}
}

// add appends children to the document body.
func (p *fakePage) add(children ...*fakeEl) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range children {
		p.doc.children = append(p.doc.children, c)
	}
}

func (e *fakeEl) append(children ...*fakeEl) *fakeEl {
	for _, c := range children {
		c.parent = e
		e.children = append(e.children, c)
	}
	return e
}

func (e *fakeEl) attachShadow(children ...*fakeEl) *fakeEl {
	e.shadow = &fakeRoot{page: e.page}
	e.shadow.children = append(e.shadow.children, children...)
	return e
}

// mutate changes the DOM under lock and signals the observer, like a
// MutationObserver batch would. Without a live subscription the signal is
// lost, as on a real page.
func (p *fakePage) mutate(fn func()) {
	p.mu.Lock()
	fn()
	sub := p.sub
	p.mu.Unlock()
	if sub == nil {
		return
	}
	select {
	case sub <- struct{}{}:
	default:
	}
}

func (p *fakePage) fired() []firedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]firedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *fakePage) firedTypes(target string) []string {
	var types []string
	for _, ev := range p.fired() {
		if target == "" || ev.Target == target {
			types = append(types, ev.Event.Type)
		}
	}
	return types
}

func (p *fakePage) disposals() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

// liveHandles is the number of handles not yet released.
func (p *fakePage) liveHandles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issued - p.released
}

func (p *fakePage) release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
	return nil
}

func (p *fakePage) Document(ctx context.Context) (output.Node, error) {
	if p.failDoc != nil {
		return nil, p.failDoc
	}
	p.mu.Lock()
	p.issued++
	p.mu.Unlock()
	return p.doc, nil
}

func (p *fakePage) Observe(ctx context.Context) (<-chan struct{}, func(), error) {
	sub := make(chan struct{}, 1)
	p.mu.Lock()
	p.observed++
	p.sub = sub
	p.mu.Unlock()
	var once sync.Once
	return sub, func() {
		once.Do(func() {
			p.mu.Lock()
			p.disposed++
			if p.sub == sub {
				p.sub = nil
			}
			p.mu.Unlock()
		})
	}, nil
}

func collect(children []*fakeEl, selector string, out *[]output.Element) {
	for _, c := range children {
		for _, m := range c.matches {
			if m == selector {
				*out = append(*out, c)
				break
			}
		}
		collect(c.children, selector, out)
	}
}

func shadows(children []*fakeEl, out *[]output.Node) {
	for _, c := range children {
		if c.shadow != nil {
			*out = append(*out, c.shadow)
		}
		shadows(c.children, out)
	}
}

func (r *fakeRoot) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	var out []output.Element
	collect(r.children, selector, &out)
	r.page.issued += len(out)
	return out, nil
}

func (r *fakeRoot) ShadowRoots(ctx context.Context) ([]output.Node, error) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	var out []output.Node
	shadows(r.children, &out)
	r.page.issued += len(out)
	return out, nil
}

func (r *fakeRoot) Release(ctx context.Context) error { return r.page.release() }

func (e *fakeEl) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	var out []output.Element
	collect(e.children, selector, &out)
	e.page.issued += len(out)
	return out, nil
}

func (e *fakeEl) ShadowRoots(ctx context.Context) ([]output.Node, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	var out []output.Node
	shadows(e.children, &out)
	e.page.issued += len(out)
	return out, nil
}

func (e *fakeEl) Release(ctx context.Context) error { return e.page.release() }

func (e *fakeEl) Visible(ctx context.Context) (bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.visErr != nil {
		return false, e.visErr
	}
	return e.visible, nil
}

func (e *fakeEl) Rect(ctx context.Context) (entity.Rect, error) {
	return e.rect, nil
}

func (e *fakeEl) IsEditable(ctx context.Context) (bool, error) {
	return e.editable, nil
}

func (e *fakeEl) InnerText(ctx context.Context) (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.editable || e.value == "" {
		return e.text, nil
	}
	return e.value, nil
}

func (e *fakeEl) InsideOf(ctx context.Context, selector string) (bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	for cur := e; cur != nil; cur = cur.parent {
		for _, c := range cur.classes {
			if "."+c == selector {
				return true, nil
			}
		}
	}
	return false, nil
}

func (e *fakeEl) Focus(ctx context.Context) error {
	e.focused = true
	return nil
}

func (e *fakeEl) ScrollIntoView(ctx context.Context) error { return nil }

func (e *fakeEl) ClearContent(ctx context.Context) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.text = ""
	return nil
}

func (e *fakeEl) SetTextContent(ctx context.Context, text string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.text = text
	return nil
}

func (e *fakeEl) CaretToEnd(ctx context.Context) error {
	e.calls = append(e.calls, "caret")
	return nil
}

func (e *fakeEl) SetNativeValue(ctx context.Context, value string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.value = value
	return nil
}

func (e *fakeEl) Dispatch(ctx context.Context, ev entity.DOMEvent) (bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.events = append(e.page.events, firedEvent{Target: e.name, Event: ev, At: time.Since(e.page.start)})
	if ev.Type == "submit" && ev.Cancelable && e.cancelsSubmit {
		return false, nil
	}
	return true, nil
}

func (e *fakeEl) Click(ctx context.Context) error {
	e.page.mu.Lock()
	e.clicked++
	e.page.events = append(e.page.events, firedEvent{Target: e.name, Event: entity.PlainEvent("click", true), At: time.Since(e.page.start)})
	onClick := e.onClick
	e.page.mu.Unlock()
	if onClick != nil {
		onClick()
	}
	return nil
}

func (e *fakeEl) CallMethod(ctx context.Context, name string) (bool, error) {
	if !e.methods[name] {
		return false, nil
	}
	e.calls = append(e.calls, name)
	return true, nil
}

func (e *fakeEl) ClosestForm(ctx context.Context) (output.Element, error) {
	for cur := e.parent; cur != nil; cur = cur.parent {
		for _, m := range cur.matches {
			if m == "form" {
				e.page.mu.Lock()
				e.page.issued++
				e.page.mu.Unlock()
				return cur, nil
			}
		}
	}
	return nil, nil
}
