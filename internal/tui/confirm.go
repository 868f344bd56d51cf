package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmFocus int

const (
	confirmFocusConfirm confirmFocus = iota
	confirmFocusCancel
)

// confirmState is a pending destructive action. The apply callback runs
// only on explicit confirmation; cancelling discards the state untouched.
type confirmState struct {
	title        string
	body         string
	confirmLabel string
	focus        confirmFocus

	apply func(m *appModel) (string, error)
}

func renderConfirmModal(width int, c *confirmState) string {
	// Avoid borders inside the button row: some terminals show background
	// artifacts when nesting bordered components inside a modal.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(c.confirmLabel)
	cancel := btnBase.Render("Cancel")
	if c.focus == confirmFocusConfirm {
		confirm = btnActive.Render(c.confirmLabel)
	} else {
		cancel = btnActive.Render("Cancel")
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := width - 8
	if bodyW < 24 {
		bodyW = 24
	}
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{
		c.body,
		"",
		controls,
		"",
		help,
	}, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 2).
		Width(bodyW + 4)
	title := lipgloss.NewStyle().Bold(true).Render(c.title)
	return box.Render(title + "\n\n" + content)
}
