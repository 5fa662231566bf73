package probe

import (
	"context"
	"fmt"
	"strings"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"
	"chat-harvester/internal/usecase/submission"
)

const maxPreview = 60

// Match describes what one selector finds on the page, shadow roots included.
type Match struct {
	Selector string `json:"selector"`
	Count    int    `json:"count"`
	Visible  int    `json:"visible"`
	Preview  string `json:"preview,omitempty"`
}

type Group struct {
	Name    string  `json:"name"`
	Matches []Match `json:"matches"`
	// Picked is the selector the engine would use, empty when nothing matches.
	Picked string `json:"picked,omitempty"`
}

type Report struct {
	URL    string  `json:"url"`
	Groups []Group `json:"groups"`
	// Answer is the text of the element the watcher would currently resolve.
	Answer string `json:"answer,omitempty"`
}

// Missing lists the groups the engine cannot work without that matched nothing.
func (r Report) Missing() []string {
	var out []string
	for _, g := range r.Groups {
		if g.Picked == "" && (g.Name == "inputs" || g.Name == "assistant_messages") {
			out = append(out, g.Name)
		}
	}
	return out
}

type UseCase struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func New(browser output.BrowserPort, logger output.LoggerPort) *UseCase {
	return &UseCase{browser: browser, logger: logger}
}

// Probe checks every selector of sel against the current page.
func (uc *UseCase) Probe(ctx context.Context, sel entity.SelectorConfig) (*Report, error) {
	doc, err := uc.browser.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	defer submission.ReleaseAll(ctx, doc)

	report := &Report{URL: uc.browser.CurrentURL()}
	for _, list := range []struct {
		name      string
		selectors []string
		visible   bool
	}{
		{"inputs", sel.Inputs, true},
		{"submit_buttons", sel.SubmitButtons, true},
		{"forms", sel.Forms, true},
		{"messages_container", sel.MessagesContainer, false},
		{"assistant_messages", sel.AssistantMessages, false},
	} {
		g, err := uc.group(ctx, doc, list.name, list.selectors, list.visible)
		if err != nil {
			return nil, err
		}
		report.Groups = append(report.Groups, g)
	}

	target, err := submission.ResolveTarget(ctx, doc, sel)
	if err != nil {
		return nil, fmt.Errorf("resolve answer: %w", err)
	}
	if target != nil {
		report.Answer, _ = submission.AnswerText(ctx, target)
		submission.ReleaseAll(ctx, target)
	}

	uc.logger.Info("Selector probe finished", "url", report.URL, "missing", report.Missing())
	return report, nil
}

// group reports every selector of a list. preferVisible mirrors the engine:
// the first visible match wins, otherwise the first match of any kind.
func (uc *UseCase) group(ctx context.Context, doc output.Node, name string, selectors []string, preferVisible bool) (Group, error) {
	g := Group{Name: name}
	firstAny := ""
	for _, s := range selectors {
		found, err := submission.DeepQueryAll(ctx, doc, s)
		if err != nil {
			return g, fmt.Errorf("query %q: %w", s, err)
		}

		m := Match{Selector: s, Count: len(found)}
		for _, el := range found {
			if visible, err := el.Visible(ctx); err == nil && visible {
				m.Visible++
			}
		}
		if len(found) > 0 {
			text, _ := found[len(found)-1].InnerText(ctx)
			m.Preview = preview(text)
		}
		submission.ReleaseAll(ctx, found...)
		g.Matches = append(g.Matches, m)

		if firstAny == "" && m.Count > 0 {
			firstAny = s
		}
		if g.Picked == "" && (m.Visible > 0 || (!preferVisible && m.Count > 0)) {
			g.Picked = s
		}
	}
	if g.Picked == "" {
		g.Picked = firstAny
	}
	return g, nil
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > maxPreview {
		return string(r[:maxPreview]) + "..."
	}
	return s
}
