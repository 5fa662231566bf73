package submission

import (
	"context"
	"strings"

	"chat-harvester/internal/application/port/output"
)

// DeepQueryAll returns every element matching selector under root,
// descending into open shadow roots. Matches of a tree come first, followed
// by the matches of each shadow root attached inside it, host by host.
func DeepQueryAll(ctx context.Context, root output.Node, selector string) ([]output.Element, error) {
	if root == nil || strings.TrimSpace(selector) == "" {
		return nil, nil
	}

	matches, err := root.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}

	shadows, err := root.ShadowRoots(ctx)
	if err != nil {
		ReleaseAll(ctx, matches...)
		return nil, err
	}
	defer ReleaseAll(ctx, shadows...)

	for _, shadow := range shadows {
		nested, err := DeepQueryAll(ctx, shadow, selector)
		if err != nil {
			ReleaseAll(ctx, matches...)
			return nil, err
		}
		matches = append(matches, nested...)
	}

	return matches, nil
}

// DeepQueryFirst is DeepQueryAll over a list of selectors, returning the
// first element of the first selector with any match.
func DeepQueryFirst(ctx context.Context, root output.Node, selectors []string) (output.Element, error) {
	for _, sel := range selectors {
		matches, err := DeepQueryAll(ctx, root, sel)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			ReleaseAll(ctx, matches[1:]...)
			return matches[0], nil
		}
	}
	return nil, nil
}

// ReleaseAll frees the driver handles of nodes the caller is done with. Nil
// entries are skipped and errors ignored. It still runs after ctx is
// cancelled.
func ReleaseAll[T output.Node](ctx context.Context, nodes ...T) {
	ctx = context.WithoutCancel(ctx)
	for _, n := range nodes {
		if any(n) == nil {
			continue
		}
		_ = n.Release(ctx)
	}
}
