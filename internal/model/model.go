package model

import "time"

// Category classifies pool items and determines which board slots accept them.
// The set is closed: the diagram template is fixed and so are its categories.
type Category string

const (
	CategoryCorporateStrategy  Category = "corporate-strategy"
	CategoryPillar             Category = "pillar"
	CategoryBusinessHeader     Category = "business-header"
	CategoryKPI                Category = "kpi"
	CategoryStrategy           Category = "strategy"
	CategoryBusinessInitiative Category = "business-initiative"
	CategoryFunctionalArea     Category = "functional-area"
	CategoryDXCInitiative      Category = "dxc-initiative"
)

// CategoryAny marks a slot with no category restriction.
const CategoryAny Category = ""

func Categories() []Category {
	return []Category{
		CategoryCorporateStrategy,
		CategoryPillar,
		CategoryBusinessHeader,
		CategoryKPI,
		CategoryStrategy,
		CategoryBusinessInitiative,
		CategoryFunctionalArea,
		CategoryDXCInitiative,
	}
}

func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Item is one free-text entry in a framework's pool. Items live in exactly
// one category of exactly one framework; slice order is creation order.
type Item struct {
	ID          string    `json:"id"`
	FrameworkID string    `json:"frameworkId"`
	Category    Category  `json:"category"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Placement assigns one pool item to one board slot. The item is referenced
// by id only; its text is resolved from the pool at read time, so pool and
// board can never disagree.
type Placement struct {
	FrameworkID string    `json:"frameworkId"`
	SlotKey     string    `json:"slotKey"`
	ItemID      string    `json:"itemId"`
	Category    Category  `json:"category"`
	PlacedAt    time.Time `json:"placedAt"`
}

// Framework is one independently editable BVF document: a name, an item
// pool, a board layout, and per-framework label/financial overrides.
type Framework struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`

	// Labels overrides the built-in KPI row captions; absent keys fall
	// back to the template defaults.
	Labels map[string]string `json:"labels,omitempty"`

	// Financials holds the free-text cells of the consolidated financial
	// sidebar (growth, cash-flow, investments, leverage).
	Financials map[string]string `json:"financials,omitempty"`
}

// DragSession is the transient state of one in-progress move of a pool item
// toward a slot. At most one exists at a time. It snapshots the item at
// pick-up time; Drop re-validates against the live pool.
type DragSession struct {
	FrameworkID string   `json:"frameworkId"`
	ItemID      string   `json:"itemId"`
	Category    Category `json:"category"`
	Text        string   `json:"text"`
}

// DefaultFrameworkName returns the placeholder name used for a framework
// created without an explicit name, e.g. "BVF - Account - January 2026".
func DefaultFrameworkName(now time.Time) string {
	return "BVF - Account - " + now.Format("January 2006")
}
