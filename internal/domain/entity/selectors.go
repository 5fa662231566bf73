package entity

import (
	"strings"
	"time"
)

const (
	DefaultStabilizationDelay = 1800 * time.Millisecond
	DefaultHardTimeout        = 180 * time.Second
)

// SelectorConfig describes where the host page keeps its compose box,
// submit controls and rendered answers. Each list is tried in order.
// It is built once per run and never mutated afterwards.
type SelectorConfig struct {
	Inputs            []string      `mapstructure:"inputs" json:"inputs"`
	SubmitButtons     []string      `mapstructure:"submit_buttons" json:"submit_buttons"`
	Forms             []string      `mapstructure:"forms" json:"forms"`
	MessagesContainer []string      `mapstructure:"messages_container" json:"messages_container"`
	AssistantMessages []string      `mapstructure:"assistant_messages" json:"assistant_messages"`
	StreamingClass    string        `mapstructure:"streaming_class" json:"streaming_class,omitempty"`
	StabilizeAfter    time.Duration `mapstructure:"stabilize_after" json:"stabilize_after"`
	HardTimeout       time.Duration `mapstructure:"hard_timeout" json:"hard_timeout"`
}

// DefaultSelectorConfig covers the common markup of ChatGPT-like pages.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		Inputs: []string{
			"#prompt-textarea",
			"div[contenteditable='true'][role='textbox']",
			"div[contenteditable='true']",
			"textarea",
		},
		SubmitButtons: []string{
			"button[data-testid='send-button']",
			"button[aria-label*='Send']",
			"button[type='submit']",
		},
		Forms: []string{
			"form",
		},
		MessagesContainer: []string{
			"main",
		},
		AssistantMessages: []string{
			"[data-message-author-role='assistant']",
			".markdown",
		},
		StreamingClass: "result-streaming",
		StabilizeAfter: DefaultStabilizationDelay,
		HardTimeout:    DefaultHardTimeout,
	}
}

// WithDefaults fills zero durations with package defaults. StreamingClass
// is a bare class name, so a leading "." is dropped.
func (c SelectorConfig) WithDefaults() SelectorConfig {
	c.StreamingClass = strings.TrimPrefix(strings.TrimSpace(c.StreamingClass), ".")
	if c.StabilizeAfter <= 0 {
		c.StabilizeAfter = DefaultStabilizationDelay
	}
	if c.HardTimeout <= 0 {
		c.HardTimeout = DefaultHardTimeout
	}
	return c
}
