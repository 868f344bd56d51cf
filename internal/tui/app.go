package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bvf-cli/internal/board"
	"bvf-cli/internal/model"
	"bvf-cli/internal/mutate"
	"bvf-cli/internal/store"
	"bvf-cli/internal/template"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type view int

const (
	viewFrameworks view = iota
	viewBoard
)

type appModel struct {
	store store.Store
	db    *store.DB

	width  int
	height int

	view view

	frameworksList list.Model
	poolList       list.Model

	// frameworkID is the board view's target. It tracks the active
	// framework; opening another framework switches the active one.
	frameworkID string
	slotIdx     int
	focusPool   bool

	// drag is the open pick-up, if any. It never survives a framework
	// switch or a return to the frameworks view.
	drag *model.DragSession

	notice    string
	noticeErr bool

	confirm *confirmState
}

func newAppModel(s store.Store, db *store.DB) appModel {
	applyColorProfilePreference()
	applyThemePreference()

	m := appModel{
		store: s,
		db:    db,
		view:  viewFrameworks,
	}
	m.frameworksList = newList("Frameworks", []list.Item{})
	m.poolList = newList("Pool", []list.Item{})
	m.refreshFrameworks()

	if st, err := s.LoadTUIState(); err == nil {
		if fw, ok := db.FindFramework(st.SelectedFrameworkID); ok {
			m.frameworkID = fw.ID
			if st.View == store.TUIViewBoard {
				m.view = viewBoard
				m.refreshPool()
			}
			for i, slot := range template.Slots() {
				if slot.Key == st.SelectedSlotKey {
					m.slotIdx = i
					break
				}
			}
			selectFrameworkByID(&m.frameworksList, fw.ID)
		}
	}
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		switch m.view {
		case viewFrameworks:
			return m.updateFrameworks(msg)
		case viewBoard:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "left", "right":
		if m.confirm.focus == confirmFocusConfirm {
			m.confirm.focus = confirmFocusCancel
		} else {
			m.confirm.focus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		c := m.confirm
		m.confirm = nil
		if c.focus == confirmFocusCancel {
			return m, nil
		}
		notice, err := c.apply(&m)
		if err != nil {
			m.setError(err.Error())
		} else {
			m.setNotice(notice)
		}
		return m, nil
	case "esc", "ctrl+g":
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m appModel) updateFrameworks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.persistTUIState()
		return m, tea.Quit
	case "enter":
		if it, ok := m.frameworksList.SelectedItem().(frameworkItem); ok {
			m.openBoard(it.fw.ID)
		}
		return m, nil
	case "n":
		res, err := mutate.CreateFramework(m.db, model.DefaultFrameworkName(time.Now()))
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		if err := m.persist("framework.create", res.Framework.ID, res.EventPayload); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.refreshFrameworks()
		selectFrameworkByID(&m.frameworksList, res.Framework.ID)
		m.setNotice("Created " + res.Framework.Name)
		return m, nil
	case "d":
		if it, ok := m.frameworksList.SelectedItem().(frameworkItem); ok {
			req, err := mutate.RequestDelete(m.db, it.fw.ID)
			if err != nil {
				if errors.Is(err, mutate.ErrLastFramework) {
					m.setError("Cannot delete the last framework")
				} else {
					m.setError(err.Error())
				}
				return m, nil
			}
			id, token := it.fw.ID, req.Token
			m.confirm = &confirmState{
				title:        "Delete framework",
				body:         fmt.Sprintf("Delete %q?\nThis removes %d items and clears %d slots.", req.Framework.Name, req.ItemCount, req.PlacementCount),
				confirmLabel: "Delete",
				focus:        confirmFocusCancel,
				apply: func(m *appModel) (string, error) {
					res, err := mutate.ConfirmDelete(m.db, id, token)
					if err != nil {
						return "", err
					}
					if err := m.persist("framework.delete", id, res.EventPayload); err != nil {
						return "", err
					}
					if m.frameworkID == id {
						m.frameworkID = res.NewActiveID
					}
					m.refreshFrameworks()
					return "Framework deleted", nil
				},
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.frameworksList, cmd = m.frameworksList.Update(msg)
	return m, cmd
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.persistTUIState()
		return m, tea.Quit
	case "esc":
		if m.drag != nil {
			m.drag = nil
			m.setNotice("Drag cancelled")
			return m, nil
		}
		m.view = viewFrameworks
		m.refreshFrameworks()
		return m, nil
	case "tab":
		m.focusPool = !m.focusPool
		return m, nil
	case "enter":
		return m.handleEnter()
	case "x", "backspace", "delete":
		if !m.focusPool {
			key := m.cursorSlotKey()
			res, err := mutate.ClearSlot(m.db, m.frameworkID, key)
			if err != nil {
				m.setError(err.Error())
				return m, nil
			}
			if res.Changed {
				if err := m.persist("layout.clear", m.frameworkID, res.EventPayload); err != nil {
					m.setError(err.Error())
					return m, nil
				}
				m.refreshPool()
				m.setNotice("Cleared " + key)
			}
		}
		return m, nil
	case "R":
		fw, ok := m.db.FindFramework(m.frameworkID)
		if !ok {
			return m, nil
		}
		n := len(m.db.PlacementsFor(m.frameworkID))
		m.confirm = &confirmState{
			title:        "Reset layout",
			body:         fmt.Sprintf("Clear all %d placed slots of %q?\nPool items are kept.", n, fw.Name),
			confirmLabel: "Reset",
			focus:        confirmFocusCancel,
			apply: func(m *appModel) (string, error) {
				res, err := mutate.ResetLayout(m.db, m.frameworkID)
				if err != nil {
					return "", err
				}
				if res.Changed {
					if err := m.persist("layout.reset", m.frameworkID, res.EventPayload); err != nil {
						return "", err
					}
				}
				m.drag = nil
				m.refreshPool()
				return fmt.Sprintf("Cleared %d slots", res.Cleared), nil
			},
		}
		return m, nil
	case "left", "h":
		if !m.focusPool {
			m.moveCursor(-1)
			return m, nil
		}
	case "right", "l":
		if !m.focusPool {
			m.moveCursor(1)
			return m, nil
		}
	case "up", "k":
		if !m.focusPool {
			m.moveCursorRow(-1)
			return m, nil
		}
	case "down", "j":
		if !m.focusPool {
			m.moveCursorRow(1)
			return m, nil
		}
	}

	if m.focusPool {
		var cmd tea.Cmd
		m.poolList, cmd = m.poolList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.focusPool {
		it, ok := m.poolList.SelectedItem().(poolItem)
		if !ok {
			return m, nil
		}
		sess, err := mutate.BeginDrag(m.db, m.frameworkID, it.item.ID)
		if err != nil {
			if errors.Is(err, mutate.ErrItemPlaced) {
				m.setError("Already on the board; clear its slot first")
			} else {
				m.setError(err.Error())
			}
			return m, nil
		}
		m.drag = sess
		m.focusPool = false
		m.setNotice("Dragging: " + displayText(sess.Text))
		return m, nil
	}

	if m.drag == nil {
		m.setError("Nothing picked up (tab to the pool, enter to pick)")
		return m, nil
	}
	key := m.cursorSlotKey()
	res, err := mutate.Drop(m.db, m.drag, key)
	if err != nil {
		var mismatch mutate.CategoryMismatchError
		if errors.As(err, &mismatch) {
			// Session stays open; the user can aim at another slot.
			m.setError(err.Error())
			return m, nil
		}
		m.drag = nil
		m.setError(err.Error())
		return m, nil
	}
	m.drag = nil
	if res.Changed {
		if err := m.persist("layout.drop", m.frameworkID, res.EventPayload); err != nil {
			m.setError(err.Error())
			return m, nil
		}
	}
	m.refreshPool()
	m.setNotice("Placed into " + key)
	return m, nil
}

func (m appModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(m.headerLine())

	var body string
	switch m.view {
	case viewFrameworks:
		body = m.frameworksList.View()
	case viewBoard:
		body = m.viewBoard()
	}

	if m.confirm != nil {
		body = renderConfirmModal(m.width, m.confirm)
	}

	footer := styleMuted().Render(m.footerLine())
	if m.notice != "" {
		style := lipgloss.NewStyle().Foreground(colorDragFg)
		if m.noticeErr {
			style = lipgloss.NewStyle().Foreground(colorErrorFg)
		}
		footer = style.Render(m.notice) + "\n" + footer
	}
	return strings.Join([]string{header, body, footer}, "\n\n")
}

func (m appModel) headerLine() string {
	if m.view == viewBoard {
		if fw, ok := m.db.FindFramework(m.frameworkID); ok {
			line := "BVF  " + fw.Name
			if m.drag != nil {
				line += lipgloss.NewStyle().Foreground(colorDragFg).Render("  [dragging: " + displayText(m.drag.Text) + "]")
			}
			return line
		}
	}
	return "BVF  Frameworks"
}

func (m appModel) footerLine() string {
	if m.confirm != nil {
		return "tab: focus  enter: select  esc: cancel"
	}
	if m.view == viewBoard {
		if m.focusPool {
			return "enter: pick up  tab: board  esc: back  q: quit"
		}
		return "arrows: move  enter: drop  x: clear slot  R: reset  tab: pool  esc: back  q: quit"
	}
	return "enter: open  n: new  d: delete  q: quit"
}

func (m appModel) viewBoard() string {
	fw, ok := m.db.FindFramework(m.frameworkID)
	if !ok {
		return "No framework selected."
	}

	poolW := 34
	boardW := m.width - poolW - 2
	if boardW < 60 {
		boardW = 60
	}

	highlight := ""
	if !m.focusPool {
		highlight = m.cursorSlotKey()
	}
	grid := board.Render(m.db, fw, board.Options{Width: boardW, Highlight: highlight})

	poolTitle := "Pool"
	if m.focusPool {
		poolTitle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("Pool")
	} else {
		poolTitle = styleMuted().Render(poolTitle)
	}
	pool := poolTitle + "\n" + m.poolList.View()

	return lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", pool)
}

// openBoard switches the editor to a framework. Entering a different
// framework cancels any open drag; a session never crosses boards.
func (m *appModel) openBoard(id string) {
	if id != m.frameworkID {
		m.drag = nil
	}
	res, err := mutate.SetActiveFramework(m.db, id)
	if err != nil {
		m.setError(err.Error())
		return
	}
	if res.Changed {
		if err := m.persist("framework.use", id, res.EventPayload); err != nil {
			m.setError(err.Error())
			return
		}
	}
	m.frameworkID = id
	m.view = viewBoard
	m.focusPool = false
	m.refreshPool()
}

func (m *appModel) refreshFrameworks() {
	var items []list.Item
	for _, fw := range m.db.Frameworks {
		items = append(items, frameworkItem{
			fw:     fw,
			active: fw.ID == m.db.ActiveFrameworkID,
			items:  len(m.db.ItemsFor(fw.ID, model.CategoryAny)),
			placed: len(m.db.PlacementsFor(fw.ID)),
		})
	}
	m.frameworksList.SetItems(items)
}

func (m *appModel) refreshPool() {
	curID := ""
	if it, ok := m.poolList.SelectedItem().(poolItem); ok {
		curID = it.item.ID
	}
	var items []list.Item
	for _, it := range m.db.ItemsFor(m.frameworkID, model.CategoryAny) {
		slotKey := ""
		if p, ok := m.db.PlacementOf(m.frameworkID, it.ID); ok {
			slotKey = p.SlotKey
		}
		items = append(items, poolItem{item: it, slotKey: slotKey})
	}
	m.poolList.SetItems(items)
	if curID != "" {
		for i, li := range m.poolList.Items() {
			if pi, ok := li.(poolItem); ok && pi.item.ID == curID {
				m.poolList.Select(i)
				break
			}
		}
	}
}

func (m *appModel) resizeLists() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.frameworksList.SetSize(w, h)
	m.poolList.SetSize(32, h)
}

func (m *appModel) cursorSlotKey() string {
	slots := template.Slots()
	if m.slotIdx < 0 || m.slotIdx >= len(slots) {
		m.slotIdx = 0
	}
	return slots[m.slotIdx].Key
}

func (m *appModel) moveCursor(delta int) {
	n := len(template.Slots())
	m.slotIdx = (m.slotIdx + delta + n) % n
}

// moveCursorRow jumps the slot cursor a whole row up or down, keeping the
// column as close as the target row allows.
func (m *appModel) moveCursorRow(delta int) {
	rows := template.Rows()
	key := m.cursorSlotKey()
	rowIdx, colIdx := 0, 0
	for ri, row := range rows {
		for ci, k := range row.SlotKeys {
			if k == key {
				rowIdx, colIdx = ri, ci
			}
		}
	}
	rowIdx = (rowIdx + delta + len(rows)) % len(rows)
	target := rows[rowIdx]
	if colIdx >= len(target.SlotKeys) {
		colIdx = len(target.SlotKeys) - 1
	}
	targetKey := target.SlotKeys[colIdx]
	for i, slot := range template.Slots() {
		if slot.Key == targetKey {
			m.slotIdx = i
			return
		}
	}
}

// persist saves the db and appends an event; the append is best-effort.
func (m *appModel) persist(typ, entityID string, payload any) error {
	if err := m.store.Save(m.db); err != nil {
		return err
	}
	_ = m.store.AppendEvent(typ, entityID, payload)
	return nil
}

func (m *appModel) persistTUIState() {
	st := &store.TUIState{
		Version:             1,
		View:                store.TUIViewFrameworks,
		SelectedFrameworkID: m.frameworkID,
		SelectedSlotKey:     m.cursorSlotKey(),
	}
	if m.view == viewBoard {
		st.View = store.TUIViewBoard
	}
	_ = m.store.SaveTUIState(st)
}

func (m *appModel) setNotice(s string) {
	m.notice = s
	m.noticeErr = false
}

func (m *appModel) setError(s string) {
	m.notice = s
	m.noticeErr = true
}

func displayText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(empty)"
	}
	if xansi.StringWidth(s) > 32 {
		return xansi.Cut(s, 0, 31) + "…"
	}
	return s
}

func selectFrameworkByID(l *list.Model, id string) {
	for i, li := range l.Items() {
		if it, ok := li.(frameworkItem); ok && it.fw.ID == id {
			l.Select(i)
			return
		}
	}
}
