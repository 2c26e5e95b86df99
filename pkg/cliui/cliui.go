// Package cliui provides terminal helpers (spinners, styled key/value output,
// markdown rendering) shared by the ragbot commands.
package cliui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	StepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	NameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var mu sync.Mutex

	go func() {
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)

	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Field is one row of a key/value listing.
type Field struct {
	Key   string
	Value string
}

// Fields renders rows as aligned "key  value" lines, indented two spaces.
// Empty values are shown as <not set>.
func Fields(rows []Field) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Key))
	}

	keyCol := KeyStyle.Width(width)

	var b strings.Builder
	for _, r := range rows {
		value := ValueStyle.Render(r.Value)
		if r.Value == "" {
			value = DimStyle.Render("<not set>")
		}
		fmt.Fprintf(&b, "  %s  %s\n", keyCol.Render(r.Key), value)
	}
	return b.String()
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// On failure the raw content is returned with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
