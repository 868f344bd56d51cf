// Package board renders a framework's slot grid as styled terminal text.
// Both the `bvf board` command and the interactive editor draw through it,
// so the two surfaces always agree on layout.
package board

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"bvf-cli/internal/model"
	"bvf-cli/internal/store"
	"bvf-cli/internal/template"
)

type Options struct {
	// Width is the total terminal width budget. Values below minWidth are
	// clamped up; the caller can still wrap or scroll.
	Width int
	// Highlight marks one slot key, drawn with an accent border. Used by
	// the editor to show the drop cursor.
	Highlight string
	// ShowKeys prints each slot's key under its text so CLI users can
	// address slots without counting cells.
	ShowKeys bool
}

const minWidth = 60

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "245", Dark: "238"}).
			Padding(0, 1)
	cellHighlightStyle = cellStyle.
				BorderForeground(lipgloss.AdaptiveColor{Light: "33", Dark: "39"})
	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "247", Dark: "241"}).
				Italic(true)
	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "240"})
	rowTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "236", Dark: "252"})
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "33", Dark: "39"})
	financialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "246"})
)

// Render draws the full board for one framework: the header, each slot
// row, and the financial summary lines.
func Render(db *store.DB, fw *model.Framework, opts Options) string {
	if db == nil || fw == nil {
		return ""
	}
	width := opts.Width
	if width < minWidth {
		width = minWidth
	}

	var out []string
	out = append(out, headerStyle.Render(fw.Name))

	for _, row := range template.Rows() {
		title := rowTitle(fw, row)
		if title != "" {
			out = append(out, rowTitleStyle.Render(title))
		}
		out = append(out, renderRow(db, fw, row, width, opts))
	}

	if lines := financialLines(fw); len(lines) > 0 {
		out = append(out, financialStyle.Render(strings.Join(lines, "\n")))
	}
	return strings.Join(out, "\n")
}

func rowTitle(fw *model.Framework, row template.Row) string {
	if row.LabelKey != "" {
		def, _ := template.DefaultLabel(row.LabelKey)
		return store.Label(fw, row.LabelKey, def)
	}
	return row.Title
}

func renderRow(db *store.DB, fw *model.Framework, row template.Row, width int, opts Options) string {
	n := len(row.SlotKeys)
	if n == 0 {
		return ""
	}
	// Each cell loses 4 columns to border and padding.
	cellW := width/n - 4
	if cellW < 6 {
		cellW = 6
	}
	cells := make([]string, 0, n)
	for _, key := range row.SlotKeys {
		cells = append(cells, renderCell(db, fw, key, cellW, opts))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func renderCell(db *store.DB, fw *model.Framework, key string, cellW int, opts Options) string {
	slot, _ := template.FindSlot(key)
	text, filled := db.SlotText(fw.ID, key)

	body := fit(text, cellW)
	if !filled || strings.TrimSpace(text) == "" {
		body = placeholderStyle.Render(fit(slot.Placeholder, cellW))
	}
	if opts.ShowKeys {
		body += "\n" + keyStyle.Render(fit(key, cellW))
	}

	style := cellStyle
	if key == opts.Highlight {
		style = cellHighlightStyle
	}
	return style.Width(cellW).Render(body)
}

func financialLines(fw *model.Framework) []string {
	var lines []string
	for _, key := range template.FinancialKeys() {
		label, _ := template.FinancialLabel(key)
		v := ""
		if fw.Financials != nil {
			v = fw.Financials[key]
		}
		lines = append(lines, label+": "+v)
	}
	return lines
}

// fit truncates to the cell width, marking cut text with an ellipsis.
func fit(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return xansi.Cut(s, 0, w)
	}
	return xansi.Cut(s, 0, w-1) + "…"
}
