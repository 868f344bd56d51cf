package mutate

import (
	"errors"
	"testing"

	"bvf-cli/internal/model"
	"bvf-cli/internal/store"
	"bvf-cli/internal/template"
)

func newTestDB(t *testing.T) (*store.DB, *model.Framework) {
	t.Helper()
	db := &store.DB{Version: 1}
	res, err := CreateFramework(db, "Test BVF")
	if err != nil {
		t.Fatalf("CreateFramework: %v", err)
	}
	return db, res.Framework
}

func addItem(t *testing.T, db *store.DB, fwID string, cat model.Category, text string) *model.Item {
	t.Helper()
	res, err := AddItem(db, fwID, cat)
	if err != nil {
		t.Fatalf("AddItem(%s): %v", cat, err)
	}
	if text != "" {
		if _, err := SetItemText(db, fwID, res.Item.ID, text); err != nil {
			t.Fatalf("SetItemText: %v", err)
		}
	}
	it, ok := db.FindItem(res.Item.ID)
	if !ok {
		t.Fatalf("item %s not found after add", res.Item.ID)
	}
	return it
}

func place(t *testing.T, db *store.DB, fwID, itemID, slotKey string) {
	t.Helper()
	sess, err := BeginDrag(db, fwID, itemID)
	if err != nil {
		t.Fatalf("BeginDrag(%s): %v", itemID, err)
	}
	if _, err := Drop(db, sess, slotKey); err != nil {
		t.Fatalf("Drop(%s -> %s): %v", itemID, slotKey, err)
	}
}

func TestAddItem_RejectsUnknownCategory(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	if _, err := AddItem(db, fw.ID, model.Category("vibes")); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if _, err := AddItem(db, "nope", model.CategoryPillar); err == nil {
		t.Fatal("expected error for missing framework")
	}
}

func TestDrop_PlacesItemInSlot(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	it := addItem(t, db, fw.ID, model.CategoryPillar, "Grow revenue")

	sess, err := BeginDrag(db, fw.ID, it.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	res, err := Drop(db, sess, "pillar-2")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if !res.Changed || res.Placement == nil {
		t.Fatalf("expected a new placement, got %+v", res)
	}
	if got, _ := db.SlotText(fw.ID, "pillar-2"); got != "Grow revenue" {
		t.Fatalf("SlotText = %q, want %q", got, "Grow revenue")
	}
	if !db.IsItemPlaced(fw.ID, it.ID) {
		t.Fatal("item should read as placed")
	}
}

func TestBeginDrag_RejectsPlacedItem(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	it := addItem(t, db, fw.ID, model.CategoryPillar, "p")
	place(t, db, fw.ID, it.ID, "pillar-1")

	if _, err := BeginDrag(db, fw.ID, it.ID); !errors.Is(err, ErrItemPlaced) {
		t.Fatalf("err = %v, want ErrItemPlaced", err)
	}

	// Once cleared, the item is draggable again.
	if res, err := ClearSlot(db, fw.ID, "pillar-1"); err != nil || !res.Changed {
		t.Fatalf("ClearSlot: changed=%v err=%v", res.Changed, err)
	}
	if _, err := BeginDrag(db, fw.ID, it.ID); err != nil {
		t.Fatalf("BeginDrag after clear: %v", err)
	}
}

func TestDrop_CategoryMismatchKeepsSessionUsable(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	it := addItem(t, db, fw.ID, model.CategoryKPI, "NPS")

	sess, err := BeginDrag(db, fw.ID, it.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	_, err = Drop(db, sess, "pillar-1")
	var mismatch CategoryMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want CategoryMismatchError", err)
	}
	if mismatch.Wants != model.CategoryPillar || mismatch.Got != model.CategoryKPI {
		t.Fatalf("mismatch = %+v", mismatch)
	}
	if len(db.PlacementsFor(fw.ID)) != 0 {
		t.Fatal("rejected drop must not mutate placements")
	}

	// Same session retries onto a compatible slot.
	if _, err := Drop(db, sess, "kpi-row1-1"); err != nil {
		t.Fatalf("retry Drop: %v", err)
	}
	if got, _ := db.SlotText(fw.ID, "kpi-row1-1"); got != "NPS" {
		t.Fatalf("SlotText = %q, want %q", got, "NPS")
	}
}

func TestDrop_ReplacesOccupant(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	a := addItem(t, db, fw.ID, model.CategoryPillar, "a")
	b := addItem(t, db, fw.ID, model.CategoryPillar, "b")
	place(t, db, fw.ID, a.ID, "pillar-1")

	sess, err := BeginDrag(db, fw.ID, b.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	res, err := Drop(db, sess, "pillar-1")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if res.Replaced == nil || res.Replaced.ItemID != a.ID {
		t.Fatalf("Replaced = %+v, want occupant %s", res.Replaced, a.ID)
	}
	if db.IsItemPlaced(fw.ID, a.ID) {
		t.Fatal("evicted item should return to the pool")
	}
	if got, _ := db.SlotText(fw.ID, "pillar-1"); got != "b" {
		t.Fatalf("SlotText = %q, want %q", got, "b")
	}
	// Each item sits in at most one slot throughout.
	if n := len(db.PlacementsFor(fw.ID)); n != 1 {
		t.Fatalf("placements = %d, want 1", n)
	}
}

func TestDrop_StaleSessionOverPlacedItem(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	it := addItem(t, db, fw.ID, model.CategoryPillar, "shared")

	// Two pick-ups of the same unplaced item; the first drop wins.
	first, err := BeginDrag(db, fw.ID, it.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	second, err := BeginDrag(db, fw.ID, it.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if _, err := Drop(db, first, "pillar-1"); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	if _, err := Drop(db, second, "pillar-2"); !errors.Is(err, ErrItemPlaced) {
		t.Fatalf("err = %v, want ErrItemPlaced", err)
	}
	// Dropping back onto the occupied slot itself is just as stale.
	if _, err := Drop(db, second, "pillar-1"); !errors.Is(err, ErrItemPlaced) {
		t.Fatalf("err = %v, want ErrItemPlaced", err)
	}
	if n := len(db.PlacementsFor(fw.ID)); n != 1 {
		t.Fatalf("placements = %d, want 1", n)
	}
	if got, _ := db.SlotText(fw.ID, "pillar-1"); got != "shared" {
		t.Fatalf("SlotText = %q, want %q", got, "shared")
	}
}

func TestDrop_UnknownSlot(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	it := addItem(t, db, fw.ID, model.CategoryPillar, "p")
	sess, err := BeginDrag(db, fw.ID, it.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	_, err = Drop(db, sess, "pillar-99")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "slot" {
		t.Fatalf("err = %v, want slot NotFoundError", err)
	}
}

func TestDrop_NilSession(t *testing.T) {
	t.Parallel()
	db, _ := newTestDB(t)
	if _, err := Drop(db, nil, "pillar-1"); !errors.Is(err, ErrNoDragSession) {
		t.Fatalf("err = %v, want ErrNoDragSession", err)
	}
}

func TestClearSlot_EmptyIsNoOp(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	res, err := ClearSlot(db, fw.ID, "strat-3")
	if err != nil {
		t.Fatalf("ClearSlot: %v", err)
	}
	if res.Changed {
		t.Fatal("clearing an empty slot must not report a change")
	}
}

func TestResetLayout_ClearsAllForFramework(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	other, err := CreateFramework(db, "Other")
	if err != nil {
		t.Fatalf("CreateFramework: %v", err)
	}
	a := addItem(t, db, fw.ID, model.CategoryPillar, "a")
	b := addItem(t, db, fw.ID, model.CategoryStrategy, "b")
	c := addItem(t, db, other.Framework.ID, model.CategoryPillar, "c")
	place(t, db, fw.ID, a.ID, "pillar-1")
	place(t, db, fw.ID, b.ID, "strat-2")
	place(t, db, other.Framework.ID, c.ID, "pillar-1")

	res, err := ResetLayout(db, fw.ID)
	if err != nil {
		t.Fatalf("ResetLayout: %v", err)
	}
	if res.Cleared != 2 {
		t.Fatalf("Cleared = %d, want 2", res.Cleared)
	}
	if len(db.PlacementsFor(fw.ID)) != 0 {
		t.Fatal("framework placements should be gone")
	}
	if len(db.PlacementsFor(other.Framework.ID)) != 1 {
		t.Fatal("other framework's layout must be untouched")
	}
	// Items survive a reset; only the layout is cleared.
	if len(db.ItemsFor(fw.ID, model.CategoryAny)) != 2 {
		t.Fatal("reset must not delete pool items")
	}
}

func TestSetItemText_ReflectsOnBoard(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	it := addItem(t, db, fw.ID, model.CategoryStrategy, "old")
	place(t, db, fw.ID, it.ID, "strat-1")

	if _, err := SetItemText(db, fw.ID, it.ID, "new"); err != nil {
		t.Fatalf("SetItemText: %v", err)
	}
	if got, _ := db.SlotText(fw.ID, "strat-1"); got != "new" {
		t.Fatalf("SlotText = %q, want %q", got, "new")
	}
}

func TestRemoveItem_ClearsItsSlot(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	it := addItem(t, db, fw.ID, model.CategoryFunctionalArea, "Finance")
	place(t, db, fw.ID, it.ID, "func-3")

	res, err := RemoveItem(db, fw.ID, it.ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(res.ClearedSlots) != 1 || res.ClearedSlots[0] != "func-3" {
		t.Fatalf("ClearedSlots = %v, want [func-3]", res.ClearedSlots)
	}
	if _, ok := db.PlacementAt(fw.ID, "func-3"); ok {
		t.Fatal("placement should be gone with the item")
	}
	if _, ok := db.FindItem(it.ID); ok {
		t.Fatal("item should be deleted")
	}
}

func TestDeleteFramework_TwoPhase(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	second, err := CreateFramework(db, "Second")
	if err != nil {
		t.Fatalf("CreateFramework: %v", err)
	}
	it := addItem(t, db, fw.ID, model.CategoryPillar, "p")
	place(t, db, fw.ID, it.ID, "pillar-1")

	req, err := RequestDelete(db, fw.ID)
	if err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if req.ItemCount != 1 || req.PlacementCount != 1 {
		t.Fatalf("cascade counts = %d/%d, want 1/1", req.ItemCount, req.PlacementCount)
	}

	res, err := ConfirmDelete(db, fw.ID, req.Token)
	if err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if res.RemovedItems != 1 || res.RemovedSlots != 1 {
		t.Fatalf("removed = %d items, %d slots", res.RemovedItems, res.RemovedSlots)
	}
	if _, ok := db.FindFramework(fw.ID); ok {
		t.Fatal("framework should be gone")
	}
	if len(db.ItemsFor(fw.ID, model.CategoryAny)) != 0 {
		t.Fatal("items should cascade")
	}
	_ = second
}

func TestDeleteFramework_StaleTokenRejected(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	if _, err := CreateFramework(db, "Second"); err != nil {
		t.Fatalf("CreateFramework: %v", err)
	}
	req, err := RequestDelete(db, fw.ID)
	if err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	// Any mutation between request and confirm invalidates the token.
	if err := Touch(db, fw.ID); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if _, err := ConfirmDelete(db, fw.ID, req.Token); !errors.Is(err, ErrStaleDeleteToken) {
		t.Fatalf("err = %v, want ErrStaleDeleteToken", err)
	}
}

func TestDeleteFramework_LastOneRefused(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	if _, err := RequestDelete(db, fw.ID); !errors.Is(err, ErrLastFramework) {
		t.Fatalf("err = %v, want ErrLastFramework", err)
	}
}

func TestDeleteActiveFramework_PromotesFirstRemaining(t *testing.T) {
	t.Parallel()
	db, a := newTestDB(t)
	b, err := CreateFramework(db, "B")
	if err != nil {
		t.Fatalf("CreateFramework: %v", err)
	}
	c, err := CreateFramework(db, "C")
	if err != nil {
		t.Fatalf("CreateFramework: %v", err)
	}
	if _, err := SetActiveFramework(db, a.ID); err != nil {
		t.Fatalf("SetActiveFramework: %v", err)
	}

	req, err := RequestDelete(db, a.ID)
	if err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	res, err := ConfirmDelete(db, a.ID, req.Token)
	if err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if res.NewActiveID != b.Framework.ID {
		t.Fatalf("active = %s, want first remaining %s", res.NewActiveID, b.Framework.ID)
	}
	if db.ActiveFrameworkID != b.Framework.ID {
		t.Fatalf("db active = %s, want %s", db.ActiveFrameworkID, b.Framework.ID)
	}

	// Deleting a non-active framework leaves the selection alone.
	req2, err := RequestDelete(db, c.Framework.ID)
	if err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if _, err := ConfirmDelete(db, c.Framework.ID, req2.Token); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if db.ActiveFrameworkID != b.Framework.ID {
		t.Fatalf("active changed to %s unexpectedly", db.ActiveFrameworkID)
	}

	// Down to one framework, deletion is refused again.
	if _, err := RequestDelete(db, b.Framework.ID); !errors.Is(err, ErrLastFramework) {
		t.Fatalf("err = %v, want ErrLastFramework", err)
	}
}

func TestCreateFramework_RejectsEmptyName(t *testing.T) {
	t.Parallel()
	db, _ := newTestDB(t)
	var verr ValidationError
	if _, err := CreateFramework(db, "   "); !errors.As(err, &verr) {
		t.Fatal("expected ValidationError for blank name")
	}
	if len(db.Frameworks) != 1 {
		t.Fatalf("frameworks = %d, want 1 (nothing created)", len(db.Frameworks))
	}
}

func TestRenameFramework_RejectsEmpty(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	var verr ValidationError
	if _, err := RenameFramework(db, fw.ID, "   "); !errors.As(err, &verr) {
		t.Fatal("expected ValidationError for blank name")
	}
	res, err := RenameFramework(db, fw.ID, "Renamed")
	if err != nil {
		t.Fatalf("RenameFramework: %v", err)
	}
	if !res.Changed || res.Framework.Name != "Renamed" {
		t.Fatalf("rename result = %+v", res)
	}
}

func TestSetCustomLabel_OverrideAndClear(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	if _, err := SetCustomLabel(db, fw.ID, "kpi-row-9", "x"); err == nil {
		t.Fatal("expected error for unknown label key")
	}
	def, ok := template.DefaultLabel("kpi-row-1")
	if !ok {
		t.Fatal("missing default for kpi-row-1")
	}
	if _, err := SetCustomLabel(db, fw.ID, "kpi-row-1", "ARR"); err != nil {
		t.Fatalf("SetCustomLabel: %v", err)
	}
	if got := store.Label(fw, "kpi-row-1", def); got != "ARR" {
		t.Fatalf("Label = %q, want %q", got, "ARR")
	}
	// Clearing restores the built-in caption.
	if _, err := SetCustomLabel(db, fw.ID, "kpi-row-1", ""); err != nil {
		t.Fatalf("SetCustomLabel clear: %v", err)
	}
	if got := store.Label(fw, "kpi-row-1", def); got != "Customer Base" {
		t.Fatalf("Label = %q, want default", got)
	}
}

func TestSetFinancial(t *testing.T) {
	t.Parallel()
	db, fw := newTestDB(t)
	if _, err := SetFinancial(db, fw.ID, "burn-rate", "x"); err == nil {
		t.Fatal("expected error for unknown financial key")
	}
	res, err := SetFinancial(db, fw.ID, "growth", "8% YoY")
	if err != nil {
		t.Fatalf("SetFinancial: %v", err)
	}
	if !res.Changed || fw.Financials["growth"] != "8% YoY" {
		t.Fatalf("financials = %v", fw.Financials)
	}
	again, err := SetFinancial(db, fw.ID, "growth", "8% YoY")
	if err != nil || again.Changed {
		t.Fatalf("same value should be a no-op, changed=%v err=%v", again.Changed, err)
	}
}
