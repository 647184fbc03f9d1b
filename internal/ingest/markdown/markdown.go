// Package markdown converts cached markdown plans into sheet-shaped rows and
// renders parsed plans back to markdown.
//
// A plan document is an optional H1 title followed by one heading per day and
// a pipe table of exercises under each heading:
//
//	# Weekly Plan (3/2/2026)
//
//	## Monday
//
//	| Block | Exercise | Sets | Reps | Load | Rest | Notes | Log |
//	|---|---|---|---|---|---|---|---|
//	| A | Squat | 3 | 5 | 135 | 90s | | |
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/claude/liftsync/internal/models"
)

// Document is a markdown plan flattened to sheet rows.
type Document struct {
	Title string
	Rows  [][]string
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Parse walks the top-level blocks of src. The first H1 becomes the title;
// other headings become single-cell rows and table header and body rows
// become one row each. Everything else is ignored.
func Parse(src []byte) Document {
	var doc Document
	root := md.Parser().Parse(text.NewReader(src))

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			label := strings.TrimSpace(nodeText(node, src))
			if node.Level == 1 && doc.Title == "" {
				doc.Title = label
				continue
			}
			if label != "" {
				doc.Rows = append(doc.Rows, []string{label})
			}
		case *east.Table:
			for r := node.FirstChild(); r != nil; r = r.NextSibling() {
				doc.Rows = append(doc.Rows, tableRow(r, src))
			}
		}
	}
	return doc
}

func tableRow(row ast.Node, src []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableCell); ok {
			cells = append(cells, strings.TrimSpace(nodeText(c, src)))
		}
	}
	return cells
}

// nodeText concatenates the literal text below n, dropping emphasis and
// link markup.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// Render writes days as a markdown plan that Parse reads back into the same
// day structure. Source rows are not preserved.
func Render(title string, days []models.DayWorkout) []byte {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	for _, d := range days {
		label := d.DayLabel
		if label == "" {
			label = d.DayName
		}
		fmt.Fprintf(&b, "## %s\n\n", label)
		writeRow(&b, models.Header)
		b.WriteString("|" + strings.Repeat("---|", models.ColumnCount) + "\n")
		for _, e := range d.Exercises {
			writeRow(&b, e.Row())
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func writeRow(b *strings.Builder, r models.Row) {
	b.WriteString("|")
	for _, c := range r {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
