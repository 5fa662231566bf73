package userinteraction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"

	"github.com/fatih/color"
)

var (
	_ output.RunView  = (*Console)(nil)
	_ output.Prompter = (*Console)(nil)
)

const (
	questionPreview = 80
	answerPreview   = 160
)

type Console struct {
	out    io.Writer
	reader *bufio.Reader
}

func NewConsole() *Console {
	return NewConsoleWith(color.Output, os.Stdin)
}

func NewConsoleWith(out io.Writer, in io.Reader) *Console {
	return &Console{
		out:    out,
		reader: bufio.NewReader(in),
	}
}

func (c *Console) WaitForUserAction(ctx context.Context, message string) error {
	fmt.Fprintf(c.out, "\n[USER ACTION REQUIRED] %s\n", message)
	fmt.Fprint(c.out, "Press Enter when done...")

	done := make(chan error, 1)
	go func() {
		_, err := c.reader.ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to wait for user: %w", err)
		}
		return nil
	}
}

func (c *Console) ShowRunStart(ctx context.Context, runID string, total int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(c.out, "\n━━━ Run %s: %d rows ━━━\n", shortID(runID), total)
}

func (c *Console) ShowRowStart(ctx context.Context, row int, question string) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(c.out, "\n▶ Row %d\n", row+1)

	dim := color.New(color.Faint)
	dim.Fprintf(c.out, "   Q: %s\n", truncate(oneLine(question), questionPreview))
}

func (c *Console) ShowRowResult(ctx context.Context, row int, outcome entity.SubmissionOutcome) {
	if !outcome.OK {
		red := color.New(color.FgRed)
		red.Fprintf(c.out, "✗ Row %d failed: %s\n", row+1, outcome.Reason)
		return
	}

	green := color.New(color.FgGreen)
	if outcome.Via.Verified() {
		green.Fprintf(c.out, "✓ Sent via %s\n", outcome.Via)
	} else {
		yellow := color.New(color.FgYellow)
		yellow.Fprintf(c.out, "? Sent via %s (unconfirmed)\n", outcome.Via)
	}

	answer := oneLine(outcome.Answer)
	if answer == "" {
		answer = "(empty answer)"
	}
	dim := color.New(color.Faint)
	dim.Fprintf(c.out, "   A: %s\n", truncate(answer, answerPreview))
}

func (c *Console) ShowRowSkipped(ctx context.Context, row int, reason string) {
	dim := color.New(color.Faint)
	dim.Fprintf(c.out, "- Row %d skipped: %s\n", row+1, reason)
}

func (c *Console) ShowRowError(ctx context.Context, row int, err error) {
	red := color.New(color.FgRed)
	red.Fprint(c.out, "❌ Error: ")

	dim := color.New(color.Faint)
	dim.Fprintf(c.out, "row %d: %s\n", row+1, truncate(err.Error(), 300))
}

func (c *Console) ShowRunEnd(ctx context.Context, stats entity.RunStats) {
	bold := color.New(color.Bold)
	bold.Fprintf(c.out, "\n━━━ Done: %d  Failed: %d  Skipped: %d  (%d/%d)",
		stats.Done, stats.Failed, stats.Skipped, stats.Next, stats.Total)
	if stats.Stopped {
		bold.Fprint(c.out, "  stopped")
	}
	bold.Fprintln(c.out, " ━━━")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
