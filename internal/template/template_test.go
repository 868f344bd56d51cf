package template

import (
	"testing"

	"bvf-cli/internal/model"
)

func TestSlots_KeysUniqueAndCategoriesValid(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Slots() {
		if s.Key == "" {
			t.Fatalf("slot with empty key")
		}
		if seen[s.Key] {
			t.Fatalf("duplicate slot key: %s", s.Key)
		}
		seen[s.Key] = true
		if s.Accepts != model.CategoryAny && !s.Accepts.Valid() {
			t.Fatalf("slot %s accepts unknown category %q", s.Key, s.Accepts)
		}
	}
	// 1 corp + 4 pillars + 4 headers + 12 kpi + 4 strategies + 24
	// initiatives + 8 functional + 5 dxc.
	if len(seen) != 62 {
		t.Fatalf("expected 62 slots; got %d", len(seen))
	}
}

func TestRows_CoverEverySlotExactlyOnce(t *testing.T) {
	counts := map[string]int{}
	for _, r := range Rows() {
		for _, k := range r.SlotKeys {
			if _, ok := FindSlot(k); !ok {
				t.Fatalf("row %q references unknown slot %q", r.Title, k)
			}
			counts[k]++
		}
	}
	for _, s := range Slots() {
		if counts[s.Key] != 1 {
			t.Fatalf("slot %s appears in %d rows; want 1", s.Key, counts[s.Key])
		}
	}
}

func TestFindSlot(t *testing.T) {
	s, ok := FindSlot("pillar-2")
	if !ok {
		t.Fatalf("pillar-2 not found")
	}
	if s.Accepts != model.CategoryPillar {
		t.Fatalf("pillar-2 accepts %q; want pillar", s.Accepts)
	}
	if _, ok := FindSlot("pillar-9"); ok {
		t.Fatalf("expected pillar-9 to be unknown")
	}
}

func TestDefaultLabels(t *testing.T) {
	for _, k := range LabelKeys() {
		v, ok := DefaultLabel(k)
		if !ok || v == "" {
			t.Fatalf("missing default label for %q", k)
		}
	}
	if _, ok := DefaultLabel("kpi-row-4"); ok {
		t.Fatalf("expected kpi-row-4 to be unknown")
	}
}

func TestFinancialLabels(t *testing.T) {
	for _, k := range FinancialKeys() {
		if _, ok := FinancialLabel(k); !ok {
			t.Fatalf("missing financial label for %q", k)
		}
	}
}
