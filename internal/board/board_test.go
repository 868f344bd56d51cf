package board

import (
	"strings"
	"testing"

	"bvf-cli/internal/model"
	"bvf-cli/internal/mutate"
	"bvf-cli/internal/store"
)

func seedBoard(t *testing.T) (*store.DB, *model.Framework) {
	t.Helper()
	db := &store.DB{Version: 1}
	res, err := mutate.CreateFramework(db, "Acme BVF")
	if err != nil {
		t.Fatalf("CreateFramework: %v", err)
	}
	fw := res.Framework
	item, err := mutate.AddItem(db, fw.ID, model.CategoryPillar)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := mutate.SetItemText(db, fw.ID, item.Item.ID, "Grow revenue"); err != nil {
		t.Fatalf("SetItemText: %v", err)
	}
	sess, err := mutate.BeginDrag(db, fw.ID, item.Item.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if _, err := mutate.Drop(db, sess, "pillar-2"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	return db, fw
}

func TestRender_ShowsPlacedTextAndName(t *testing.T) {
	t.Parallel()
	db, fw := seedBoard(t)
	out := Render(db, fw, Options{Width: 120})
	if !strings.Contains(out, "Acme BVF") {
		t.Fatal("board should carry the framework name")
	}
	if !strings.Contains(out, "Grow revenue") {
		t.Fatal("placed item text should appear on the board")
	}
}

func TestRender_ShowKeysListsSlotKeys(t *testing.T) {
	t.Parallel()
	db, fw := seedBoard(t)
	out := Render(db, fw, Options{Width: 160, ShowKeys: true})
	for _, key := range []string{"corp-strat", "pillar-1", "dxc-5"} {
		if !strings.Contains(out, key) {
			t.Fatalf("missing slot key %q in keyed render", key)
		}
	}
}

func TestRender_CustomLabelReplacesDefault(t *testing.T) {
	t.Parallel()
	db, fw := seedBoard(t)
	if _, err := mutate.SetCustomLabel(db, fw.ID, "kpi-row-1", "ARR"); err != nil {
		t.Fatalf("SetCustomLabel: %v", err)
	}
	out := Render(db, fw, Options{Width: 120})
	if !strings.Contains(out, "ARR") {
		t.Fatal("custom KPI row caption should render")
	}
	if strings.Contains(out, "Customer Base") {
		t.Fatal("overridden default caption should not render")
	}
}

func TestRender_FinancialLines(t *testing.T) {
	t.Parallel()
	db, fw := seedBoard(t)
	if _, err := mutate.SetFinancial(db, fw.ID, "growth", "8% YoY"); err != nil {
		t.Fatalf("SetFinancial: %v", err)
	}
	out := Render(db, fw, Options{Width: 120})
	if !strings.Contains(out, "Growth: 8% YoY") {
		t.Fatal("financial line should render with its label")
	}
}
