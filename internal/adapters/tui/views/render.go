package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"tagit/internal/adapters/tui/styles"
)

// page accumulates the lines of one screen. Every view renders through it so
// titles, status messages and key hints sit in the same places.
type page struct {
	b strings.Builder
}

func newPage(title string) *page {
	p := &page{}
	p.b.WriteString(styles.Title.Render(title))
	p.b.WriteString("\n\n")
	return p
}

func (p *page) line(text string) *page {
	p.b.WriteString(text)
	p.b.WriteString("\n")
	return p
}

func (p *page) muted(text string) *page {
	return p.line(styles.MutedText.Render(text))
}

func (p *page) gap() *page {
	p.b.WriteString("\n")
	return p
}

// status shows the last operation's outcome; nothing when msg is empty
func (p *page) status(msg string, isErr bool) *page {
	if msg == "" {
		return p
	}
	p.b.WriteString(statusText(msg, isErr))
	p.b.WriteString("\n\n")
	return p
}

// hints ends the page with the key bindings that apply on it
func (p *page) hints(bindings ...key.Binding) *page {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	p.b.WriteString(strings.Join(parts, styles.HelpSeparator.String()))
	return p
}

func (p *page) String() string {
	return styles.App.Render(p.b.String())
}

func statusText(msg string, isErr bool) string {
	if isErr {
		return styles.ErrorMsg.Render(msg)
	}
	return styles.Success.Render(msg)
}

// fileLine renders "File: <path>" the way every file-scoped view shows its target
func fileLine(display string) string {
	return styles.InputLabel.Render("File:") + " " + styles.NodeFile.Render(display)
}
