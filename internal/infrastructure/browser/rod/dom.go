package rod

import (
	"context"
	"fmt"
	"strings"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"

	"github.com/go-rod/rod"
)

var _ output.Element = (*element)(nil)

// element wraps any page node: the document, a shadow root or an element.
type element struct {
	el *rod.Element
}

func wrap(els rod.Elements) []output.Element {
	out := make([]output.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out
}

func (e *element) eval(ctx context.Context, js string, args ...interface{}) (*rodResult, error) {
	res, err := e.el.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, err
	}
	return &rodResult{res.Value}, nil
}

func (e *element) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("%w: empty", output.ErrInvalidSelector)
	}
	els, err := e.el.Context(ctx).ElementsByJS(rod.Eval(jsQueryAll, selector))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return wrap(els), nil
}

func (e *element) ShadowRoots(ctx context.Context) ([]output.Node, error) {
	els, err := e.el.Context(ctx).ElementsByJS(rod.Eval(jsShadowRoots))
	if err != nil {
		return nil, fmt.Errorf("shadow roots: %w", err)
	}
	out := make([]output.Node, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

func (e *element) Release(ctx context.Context) error {
	return e.el.Context(ctx).Release()
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	res, err := e.eval(ctx, jsVisible)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

func (e *element) Rect(ctx context.Context) (entity.Rect, error) {
	res, err := e.eval(ctx, jsRect)
	if err != nil {
		return entity.Rect{}, err
	}
	return entity.Rect{
		Left:   res.Num("left"),
		Top:    res.Num("top"),
		Width:  res.Num("width"),
		Height: res.Num("height"),
	}, nil
}

func (e *element) IsEditable(ctx context.Context) (bool, error) {
	res, err := e.eval(ctx, jsIsEditable)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

func (e *element) InnerText(ctx context.Context) (string, error) {
	res, err := e.eval(ctx, jsInnerText)
	if err != nil {
		return "", err
	}
	return res.Str(), nil
}

func (e *element) InsideOf(ctx context.Context, selector string) (bool, error) {
	res, err := e.eval(ctx, jsInsideOf, selector)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

func (e *element) Focus(ctx context.Context) error {
	_, err := e.eval(ctx, jsFocus)
	return err
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	_, err := e.eval(ctx, jsScrollIntoView)
	return err
}

func (e *element) ClearContent(ctx context.Context) error {
	_, err := e.eval(ctx, jsClearContent)
	return err
}

func (e *element) SetTextContent(ctx context.Context, text string) error {
	_, err := e.eval(ctx, jsSetTextContent, text)
	return err
}

func (e *element) CaretToEnd(ctx context.Context) error {
	_, err := e.eval(ctx, jsCaretToEnd)
	return err
}

func (e *element) SetNativeValue(ctx context.Context, value string) error {
	_, err := e.eval(ctx, jsSetNativeValue, value)
	return err
}

func (e *element) Dispatch(ctx context.Context, ev entity.DOMEvent) (bool, error) {
	res, err := e.eval(ctx, jsDispatch, ev)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

func (e *element) Click(ctx context.Context) error {
	_, err := e.eval(ctx, jsClick)
	return err
}

func (e *element) CallMethod(ctx context.Context, name string) (bool, error) {
	res, err := e.eval(ctx, jsCallMethod, name)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

func (e *element) ClosestForm(ctx context.Context) (output.Element, error) {
	els, err := e.el.Context(ctx).ElementsByJS(rod.Eval(jsClosestForm))
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return &element{el: els[0]}, nil
}
