package probe

import (
	"context"
	"errors"
	"testing"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
	"chat-harvester/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEl only implements what the probe reads; other calls panic.
type fakeEl struct {
	output.Element
	visible bool
	text    string
}

func (e *fakeEl) Visible(context.Context) (bool, error)   { return e.visible, nil }
func (e *fakeEl) InnerText(context.Context) (string, error) { return e.text, nil }
func (e *fakeEl) QueryAll(context.Context, string) ([]output.Element, error) {
	return nil, nil
}
func (e *fakeEl) ShadowRoots(context.Context) ([]output.Node, error) { return nil, nil }
func (e *fakeEl) InsideOf(context.Context, string) (bool, error)   { return false, nil }
func (e *fakeEl) Release(context.Context) error                    { return nil }

type fakeRoot struct {
	matches map[string][]output.Element
	shadows []output.Node
}

func (r *fakeRoot) QueryAll(_ context.Context, sel string) ([]output.Element, error) {
	return r.matches[sel], nil
}

func (r *fakeRoot) ShadowRoots(context.Context) ([]output.Node, error) { return r.shadows, nil }
func (r *fakeRoot) Release(context.Context) error                    { return nil }

type fakeBrowser struct {
	output.BrowserPort
	doc    output.Node
	docErr error
}

func (b *fakeBrowser) Document(context.Context) (output.Node, error) { return b.doc, b.docErr }
func (b *fakeBrowser) CurrentURL() string                           { return "https://chat.test/" }

func selectors() entity.SelectorConfig {
	return entity.SelectorConfig{
		Inputs:            []string{"#prompt", "textarea"},
		SubmitButtons:     []string{"#send"},
		Forms:             []string{"form"},
		MessagesContainer: []string{"main"},
		AssistantMessages: []string{".bot"},
	}
}

func TestProbe_ReportsMatchesAcrossShadowRoots(t *testing.T) {
	hiddenArea := &fakeEl{visible: false}
	shadow := &fakeRoot{matches: map[string][]output.Element{
		"#prompt": {&fakeEl{visible: true, text: "draft"}},
	}}
	doc := &fakeRoot{
		matches: map[string][]output.Element{
			"textarea": {hiddenArea},
			"main":     {&fakeEl{visible: true}},
			".bot":     {&fakeEl{visible: true, text: "old"}, &fakeEl{visible: true, text: "  latest\n answer "}},
		},
		shadows: []output.Node{shadow},
	}

	uc := New(&fakeBrowser{doc: doc}, logger.NewNop())
	report, err := uc.Probe(context.Background(), selectors())
	require.NoError(t, err)

	assert.Equal(t, "https://chat.test/", report.URL)
	require.Len(t, report.Groups, 5)

	inputs := report.Groups[0]
	assert.Equal(t, "inputs", inputs.Name)
	assert.Equal(t, "#prompt", inputs.Picked)
	assert.Equal(t, Match{Selector: "#prompt", Count: 1, Visible: 1, Preview: "draft"}, inputs.Matches[0])
	assert.Equal(t, Match{Selector: "textarea", Count: 1, Visible: 0}, inputs.Matches[1])

	buttons := report.Groups[1]
	assert.Equal(t, "", buttons.Picked)
	assert.Equal(t, 0, buttons.Matches[0].Count)

	bots := report.Groups[4]
	assert.Equal(t, ".bot", bots.Picked)
	assert.Equal(t, "latest answer", bots.Matches[0].Preview)

	assert.Empty(t, report.Missing())
}

func TestProbe_HiddenOnlyFallsBackToFirstMatch(t *testing.T) {
	doc := &fakeRoot{matches: map[string][]output.Element{
		"textarea": {&fakeEl{visible: false}},
	}}

	report, err := New(&fakeBrowser{doc: doc}, logger.NewNop()).Probe(context.Background(), selectors())
	require.NoError(t, err)

	assert.Equal(t, "textarea", report.Groups[0].Picked)
	assert.Equal(t, []string{"assistant_messages"}, report.Missing())
	assert.Empty(t, report.Answer)
}

func TestProbe_DocumentError(t *testing.T) {
	uc := New(&fakeBrowser{docErr: output.ErrNoPage}, logger.NewNop())
	_, err := uc.Probe(context.Background(), selectors())
	assert.True(t, errors.Is(err, output.ErrNoPage))
}

func TestPreview(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "я"
	}
	assert.Equal(t, maxPreview+3, len([]rune(preview(long))))
	assert.Equal(t, "a b", preview(" a\n\tb "))
}
