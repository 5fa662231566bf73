package output

import (
	"context"
	"errors"

	"chat-harvester/internal/domain/entity"
)

var (
	ErrInvalidSelector = errors.New("invalid selector")
	ErrNoPage          = errors.New("no active page")
)

// Node is a DOM tree root: the document, a shadow root or an element.
type Node interface {
	// QueryAll returns matches inside this node's own tree in document order.
	// It does not cross shadow boundaries.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// ShadowRoots returns the open shadow roots attached to descendants of
	// this node's tree, in document order of their hosts.
	ShadowRoots(ctx context.Context) ([]Node, error)
	// Release frees the driver handle behind the node. The node must not be
	// used afterwards.
	Release(ctx context.Context) error
}

type Element interface {
	Node

	Visible(ctx context.Context) (bool, error)
	Rect(ctx context.Context) (entity.Rect, error)
	IsEditable(ctx context.Context) (bool, error)
	InnerText(ctx context.Context) (string, error)
	// InsideOf reports whether the element or one of its ancestors matches selector.
	InsideOf(ctx context.Context, selector string) (bool, error)

	Focus(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
	ClearContent(ctx context.Context) error
	SetTextContent(ctx context.Context, text string) error
	CaretToEnd(ctx context.Context) error
	// SetNativeValue writes through the prototype value setter so that
	// framework-level property overrides do not swallow the change.
	SetNativeValue(ctx context.Context, value string) error

	// Dispatch fires ev on the element and returns false if a listener
	// cancelled it.
	Dispatch(ctx context.Context, ev entity.DOMEvent) (bool, error)
	Click(ctx context.Context) error
	// CallMethod invokes a zero-argument method and reports whether it existed.
	CallMethod(ctx context.Context, name string) (bool, error)
	// ClosestForm returns the enclosing form or nil.
	ClosestForm(ctx context.Context) (Element, error)
}

// PagePort is the live page the engine operates on.
type PagePort interface {
	Document(ctx context.Context) (Node, error)
	// Observe subscribes to document mutations (subtree, child list and
	// character data). Each receive on the channel stands for at least one
	// mutation batch. The returned func disposes the subscription and is safe
	// to call more than once.
	Observe(ctx context.Context) (<-chan struct{}, func(), error)
}
