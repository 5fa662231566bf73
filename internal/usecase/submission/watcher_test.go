package submission

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
	"chat-harvester/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatPage builds <main> holding one earlier answer and one fresh, empty one.
func chatPage() (*fakePage, *fakeEl) {
	p := newFakePage()
	old := p.el("old-answer", ".assistant")
	old.text = "earlier answer"
	fresh := p.el("fresh-answer", ".assistant")
	main := p.el("main", "main").append(old, fresh)
	p.add(main)
	return p, fresh
}

func setText(p *fakePage, el *fakeEl, text string) {
	p.mutate(func() { el.text = text })
}

// afterEach runs steps at the given offsets and returns a wait func.
func afterEach(offsets []time.Duration, step func(i int)) func() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		for i, off := range offsets {
			time.Sleep(time.Until(start.Add(off)))
			step(i)
		}
	}()
	return wg.Wait
}

func startWatch(t *testing.T, p *fakePage, sel entity.SelectorConfig) *Watch {
	t.Helper()
	wt, err := NewWatcher(p, logger.NewNop()).Start(context.Background(), sel)
	require.NoError(t, err)
	t.Cleanup(wt.Close)
	return wt
}

// waitFor subscribes and awaits with nothing fired in between.
func waitFor(ctx context.Context, p *fakePage, sel entity.SelectorConfig) (output.Element, error) {
	wt, err := NewWatcher(p, logger.NewNop()).Start(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer wt.Close()
	return wt.Await(ctx)
}

func TestWatchState_ObserveOnlyReportsChanges(t *testing.T) {
	p := newFakePage()
	el := p.el("a")
	s := &watchState{}

	assert.False(t, s.observe(context.Background(), el, ""), "empty text never arms the timer")
	assert.True(t, s.observe(context.Background(), el, "Hel"))
	assert.False(t, s.observe(context.Background(), el, "Hel"))
	assert.False(t, s.observe(context.Background(), el, "Hel"))
	assert.True(t, s.observe(context.Background(), el, "Hello"))
	assert.Equal(t, "Hello", s.lastText)
}

func TestWatcher_ResolvesAfterStabilization(t *testing.T) {
	p, fresh := chatPage()
	sel := testSelectors()
	sel.StabilizeAfter = 180 * time.Millisecond

	wt := startWatch(t, p, sel)
	start := time.Now()
	wait := afterEach([]time.Duration{0, 50 * time.Millisecond}, func(i int) {
		setText(p, fresh, []string{"Hel", "Hello"}[i])
	})
	defer wait()

	el, err := wt.Await(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.NotNil(t, el)
	assert.Equal(t, "fresh-answer", el.(*fakeEl).name)
	assert.GreaterOrEqual(t, elapsed, 230*time.Millisecond)
	assert.Less(t, elapsed, 700*time.Millisecond)
	wt.Close()
	wt.Close()
	assert.Equal(t, 1, p.disposals())
}

func TestWatcher_StreamedAnswerWithDefaultDelay(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping full-length stabilization in short mode")
	}

	p, fresh := chatPage()
	sel := testSelectors()
	sel.StabilizeAfter = entity.DefaultStabilizationDelay

	wt := startWatch(t, p, sel)
	start := time.Now()
	wait := afterEach([]time.Duration{0, 500 * time.Millisecond}, func(i int) {
		setText(p, fresh, []string{"Par", "Paris is the capital of France."}[i])
	})
	defer wait()

	el, err := wt.Await(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.NotNil(t, el)
	text, _ := AnswerText(context.Background(), el)
	assert.Equal(t, "Paris is the capital of France.", text)
	assert.GreaterOrEqual(t, elapsed, 2300*time.Millisecond)
	assert.Less(t, elapsed, 2900*time.Millisecond)
}

func TestWatcher_MutationsWithoutTextChangeDoNotExtend(t *testing.T) {
	p, fresh := chatPage()
	sel := testSelectors()
	sel.StabilizeAfter = 150 * time.Millisecond

	offsets := []time.Duration{0}
	for i := 1; i <= 8; i++ {
		offsets = append(offsets, time.Duration(i)*40*time.Millisecond)
	}
	wt := startWatch(t, p, sel)
	start := time.Now()
	wait := afterEach(offsets, func(i int) {
		if i == 0 {
			setText(p, fresh, "done")
			return
		}
		p.mutate(func() {})
	})
	defer wait()

	el, err := wt.Await(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.NotNil(t, el)
	assert.Less(t, elapsed, 300*time.Millisecond, "unchanged text must not restart the window")
}

func TestWatcher_IgnoresStreamingTarget(t *testing.T) {
	for _, class := range []string{"streaming", ".streaming", " .streaming "} {
		t.Run(class, func(t *testing.T) {
			p := newFakePage()
			wrapper := p.el("wrapper")
			wrapper.classes = []string{"streaming"}
			answer := p.el("answer", ".assistant")
			wrapper.append(answer)
			p.add(p.el("main", "main").append(wrapper))

			sel := testSelectors()
			sel.StreamingClass = class
			sel.StabilizeAfter = 80 * time.Millisecond

			wt := startWatch(t, p, sel)
			start := time.Now()
			wait := afterEach([]time.Duration{0, 20 * time.Millisecond, 200 * time.Millisecond}, func(i int) {
				switch i {
				case 0:
					setText(p, answer, "partial")
				case 1:
					setText(p, answer, "partial and more")
				case 2:
					p.mutate(func() {
						wrapper.classes = nil
						answer.text = "final"
					})
				}
			})
			defer wait()

			el, err := wt.Await(context.Background())
			elapsed := time.Since(start)

			require.NoError(t, err)
			text, _ := AnswerText(context.Background(), el)
			assert.Equal(t, "final", text)
			assert.GreaterOrEqual(t, elapsed, 280*time.Millisecond)
		})
	}
}

func TestWatcher_ScopesToContainerAndPicksLast(t *testing.T) {
	p := newFakePage()
	outside := p.el("outside", ".assistant")
	first := p.el("first", ".assistant")
	last := p.el("last", ".assistant")
	p.add(p.el("main", "main").append(first, last), outside)

	target, err := ResolveTarget(context.Background(), p.doc, testSelectors())
	require.NoError(t, err)
	assert.Equal(t, "last", target.(*fakeEl).name)
}

func TestWatcher_FallsBackToDocumentWithoutContainer(t *testing.T) {
	p := newFakePage()
	p.add(p.el("a1", ".assistant"), p.el("host").attachShadow(p.el("a2", ".assistant")))

	target, err := ResolveTarget(context.Background(), p.doc, testSelectors())
	require.NoError(t, err)
	assert.Equal(t, "a2", target.(*fakeEl).name)
}

func TestWatcher_FirstMatchingAssistantSelectorWins(t *testing.T) {
	p := newFakePage()
	p.add(p.el("main", "main").append(
		p.el("md1", ".markdown"),
		p.el("role", "[data-role=assistant]"),
		p.el("md2", ".markdown"),
	))
	sel := testSelectors()
	sel.AssistantMessages = []string{"[data-role=assistant]", ".markdown"}

	target, err := ResolveTarget(context.Background(), p.doc, sel)
	require.NoError(t, err)
	assert.Equal(t, "role", target.(*fakeEl).name)
}

func TestWatcher_HardTimeoutWithoutTarget(t *testing.T) {
	p := newFakePage()
	sel := testSelectors()
	sel.HardTimeout = 120 * time.Millisecond

	start := time.Now()
	el, err := waitFor(context.Background(), p, sel)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Nil(t, el)
	assert.GreaterOrEqual(t, elapsed, 120*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond)
	assert.Equal(t, 1, p.disposals())
}

func TestWatcher_HardTimeoutWhileStillChanging(t *testing.T) {
	p, fresh := chatPage()
	sel := testSelectors()
	sel.StabilizeAfter = 100 * time.Millisecond
	sel.HardTimeout = 250 * time.Millisecond

	var offsets []time.Duration
	for i := 0; i < 20; i++ {
		offsets = append(offsets, time.Duration(i)*20*time.Millisecond)
	}
	wt := startWatch(t, p, sel)
	start := time.Now()
	wait := afterEach(offsets, func(i int) {
		setText(p, fresh, string(rune('a'+i)))
	})
	defer wait()

	el, err := wt.Await(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.NotNil(t, el)
	assert.Equal(t, "fresh-answer", el.(*fakeEl).name)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestWatcher_ContextCancelDisposes(t *testing.T) {
	p, _ := chatPage()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	el, err := waitFor(ctx, p, testSelectors())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, el)
	assert.Equal(t, 1, p.disposals())
}

func TestWatcher_SeesChangeBetweenStartAndAwait(t *testing.T) {
	p, fresh := chatPage()
	sel := testSelectors()
	sel.StabilizeAfter = 60 * time.Millisecond
	sel.HardTimeout = 2 * time.Second

	wt := startWatch(t, p, sel)
	setText(p, fresh, "quick")

	start := time.Now()
	el, err := wt.Await(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	text, _ := AnswerText(context.Background(), el)
	assert.Equal(t, "quick", text)
	assert.Less(t, elapsed, 500*time.Millisecond, "must settle, not run into the hard timeout")
}

func TestWatcher_IgnoresChangesBeforeStart(t *testing.T) {
	p, fresh := chatPage()
	sel := testSelectors()
	sel.HardTimeout = 150 * time.Millisecond

	setText(p, fresh, "stale")

	start := time.Now()
	el, err := waitFor(context.Background(), p, sel)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.NotNil(t, el)
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond, "no mutation after subscribing, so only the hard timeout ends the wait")
	assert.Equal(t, 1, p.observed)
}

func TestWatcher_ReleasesSupersededTargets(t *testing.T) {
	p, fresh := chatPage()
	p.add(p.el("widget").attachShadow(p.el("shadow-note", ".note")))
	sel := testSelectors()
	sel.StabilizeAfter = 60 * time.Millisecond

	var offsets []time.Duration
	for i := 0; i < 10; i++ {
		offsets = append(offsets, time.Duration(i+1)*10*time.Millisecond)
	}
	wt := startWatch(t, p, sel)
	wait := afterEach(offsets, func(i int) {
		setText(p, fresh, strings.Repeat("x", i+1))
	})
	defer wait()

	el, err := wt.Await(context.Background())
	require.NoError(t, err)
	require.NotNil(t, el)
	ReleaseAll(context.Background(), el)
	wt.Close()

	assert.Greater(t, p.issued, 10, "every batch resolves fresh handles")
	assert.Zero(t, p.liveHandles())
}
