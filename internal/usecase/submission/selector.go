package submission

import (
	"context"

	"chat-harvester/internal/application/port/output"
)

// PickVisible walks selectors in priority order and returns the first match
// that is rendered. When nothing is rendered it falls back to the first match
// of any visibility, so off-screen decoys only win when they are all there is.
//
// Every candidate handle except the returned one is released.
func PickVisible(ctx context.Context, root output.Node, selectors []string) (picked output.Element, err error) {
	var seen []output.Element
	defer func() {
		kept := false
		for _, el := range seen {
			if !kept && el == picked {
				kept = true
				continue
			}
			ReleaseAll(ctx, el)
		}
	}()

	var fallback output.Element
	for _, sel := range selectors {
		matches, err := DeepQueryAll(ctx, root, sel)
		if err != nil {
			return nil, err
		}
		seen = append(seen, matches...)
		for _, el := range matches {
			if fallback == nil {
				fallback = el
			}
			visible, err := el.Visible(ctx)
			if err != nil {
				continue
			}
			if visible {
				return el, nil
			}
		}
	}

	return fallback, nil
}
