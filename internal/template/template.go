// Package template declares the fixed BVF diagram template: the slot set,
// which category each slot accepts, the board's row structure, and the
// built-in caption defaults. Slots are never created or destroyed at
// runtime; only their occupancy changes.
package template

import (
	"fmt"

	"bvf-cli/internal/model"
)

// Slot is one fixed position on the board.
type Slot struct {
	Key string

	// Accepts is the single category this slot takes.
	// model.CategoryAny means no restriction.
	Accepts model.Category

	// Placeholder is shown while the slot is empty (e.g. "Pillar 2").
	Placeholder string
}

// Row groups slots for rendering: one labeled board row, left to right.
type Row struct {
	Title    string
	SlotKeys []string

	// LabelKey is set for rows whose caption is a per-framework custom
	// label (the KPI metric rows); empty otherwise.
	LabelKey string
}

var slots []Slot
var slotByKey = map[string]Slot{}
var rows []Row

func addRow(title, labelKey string, accepts model.Category, keys ...string) {
	for _, k := range keys {
		placeholder := defaultPlaceholder(accepts)
		slot := Slot{Key: k, Accepts: accepts, Placeholder: placeholder}
		slots = append(slots, slot)
		slotByKey[k] = slot
	}
	rows = append(rows, Row{Title: title, SlotKeys: keys, LabelKey: labelKey})
}

func defaultPlaceholder(c model.Category) string {
	switch c {
	case model.CategoryCorporateStrategy:
		return "Corporate Strategy"
	case model.CategoryPillar:
		return "Pillar"
	case model.CategoryBusinessHeader:
		return "Header"
	case model.CategoryKPI:
		return "Metric"
	case model.CategoryStrategy:
		return "Strategy"
	case model.CategoryBusinessInitiative:
		return "Init"
	case model.CategoryFunctionalArea:
		return "Area"
	case model.CategoryDXCInitiative:
		return "Initiative"
	default:
		return "Drop here"
	}
}

func init() {
	addRow("Corporate Strategy", "", model.CategoryCorporateStrategy, "corp-strat")
	addRow("Strategic Pillars", "", model.CategoryPillar,
		"pillar-1", "pillar-2", "pillar-3", "pillar-4")
	addRow("Businesses", "", model.CategoryBusinessHeader,
		"kpi-head-1", "kpi-head-2", "kpi-head-3", "kpi-head-4")
	for r := 1; r <= 3; r++ {
		keys := make([]string, 0, 4)
		for c := 1; c <= 4; c++ {
			keys = append(keys, fmt.Sprintf("kpi-row%d-%d", r, c))
		}
		addRow("", fmt.Sprintf("kpi-row-%d", r), model.CategoryKPI, keys...)
	}
	addRow("Business Strategies", "", model.CategoryStrategy,
		"strat-1", "strat-2", "strat-3", "strat-4")
	// Business initiatives: 4 columns of a 3x2 mini-grid each, flattened
	// into three rendered rows of 8.
	for r := 1; r <= 3; r++ {
		keys := make([]string, 0, 8)
		for c := 1; c <= 4; c++ {
			keys = append(keys, fmt.Sprintf("init-c%d-r%d-c1", c, r), fmt.Sprintf("init-c%d-r%d-c2", c, r))
		}
		title := ""
		if r == 1 {
			title = "Business Initiatives"
		}
		addRow(title, "", model.CategoryBusinessInitiative, keys...)
	}
	addRow("Functional Areas", "", model.CategoryFunctionalArea,
		"func-1", "func-2", "func-3", "func-4", "func-5", "func-6", "func-7", "func-8")
	addRow("DXC Initiatives", "", model.CategoryDXCInitiative,
		"dxc-1", "dxc-2", "dxc-3", "dxc-4", "dxc-5")
}

// Slots returns every board slot in template order.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// Rows returns the board's rendering structure, top to bottom.
func Rows() []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}

// FindSlot looks up a slot by key.
func FindSlot(key string) (Slot, bool) {
	s, ok := slotByKey[key]
	return s, ok
}

// defaultLabels are the built-in KPI row captions a framework starts with.
var defaultLabels = map[string]string{
	"kpi-row-1": "Customer Base",
	"kpi-row-2": "Revenue",
	"kpi-row-3": "EBITDA",
}

// LabelKeys returns the custom-label keys in board order.
func LabelKeys() []string {
	return []string{"kpi-row-1", "kpi-row-2", "kpi-row-3"}
}

// DefaultLabel returns the built-in caption for a label key.
func DefaultLabel(key string) (string, bool) {
	v, ok := defaultLabels[key]
	return v, ok
}

// financialLabels caption the free-text cells of the financial sidebar.
var financialLabels = map[string]string{
	"growth":      "Growth",
	"cash-flow":   "Cash Flow",
	"investments": "Investments",
	"leverage":    "Leverage",
}

// FinancialKeys returns the financial-cell keys in sidebar order.
func FinancialKeys() []string {
	return []string{"growth", "cash-flow", "investments", "leverage"}
}

// FinancialLabel returns the sidebar caption for a financial key.
func FinancialLabel(key string) (string, bool) {
	v, ok := financialLabels[key]
	return v, ok
}

// CategoryTitle returns the pool-panel heading for a category.
func CategoryTitle(c model.Category) string {
	switch c {
	case model.CategoryCorporateStrategy:
		return "Corporate Strategy"
	case model.CategoryPillar:
		return "Strategic Pillars"
	case model.CategoryBusinessHeader:
		return "Business Headers"
	case model.CategoryKPI:
		return "Executive KPIs"
	case model.CategoryStrategy:
		return "Business Strategies"
	case model.CategoryBusinessInitiative:
		return "Business Initiatives"
	case model.CategoryFunctionalArea:
		return "Functional Areas"
	case model.CategoryDXCInitiative:
		return "DXC Initiatives"
	default:
		return string(c)
	}
}
