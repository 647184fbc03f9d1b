package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// renderMarkdown renders md for the terminal. Raw output skips styling.
func renderMarkdown(w io.Writer, md []byte, raw bool) error {
	if raw || color.NoColor {
		_, err := w.Write(md)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(string(md))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
