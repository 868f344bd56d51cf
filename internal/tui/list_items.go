package tui

import (
	"fmt"
	"strings"

	"bvf-cli/internal/model"
	"bvf-cli/internal/template"

	"github.com/charmbracelet/bubbles/list"
)

type frameworkItem struct {
	fw     model.Framework
	active bool
	items  int
	placed int
}

func (i frameworkItem) FilterValue() string { return i.fw.Name }
func (i frameworkItem) Title() string {
	if i.active {
		return i.fw.Name + " ●"
	}
	return i.fw.Name
}
func (i frameworkItem) Description() string {
	return fmt.Sprintf("%s  %d items, %d placed", i.fw.ID, i.items, i.placed)
}

type poolItem struct {
	item    model.Item
	slotKey string // empty when unplaced
}

func (i poolItem) FilterValue() string { return i.item.Text }
func (i poolItem) Title() string {
	text := strings.TrimSpace(i.item.Text)
	if text == "" {
		text = "(empty)"
	}
	if i.slotKey != "" {
		return text + "  → " + i.slotKey
	}
	return text
}
func (i poolItem) Description() string {
	return template.CategoryTitle(i.item.Category)
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	// We render our own global header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}
