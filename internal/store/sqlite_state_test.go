package store

import (
	"testing"
	"time"

	"bvf-cli/internal/model"
)

func TestLoad_SeedsInitialFramework(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(db.Frameworks) != 1 {
		t.Fatalf("expected 1 seeded framework; got %d", len(db.Frameworks))
	}
	if db.ActiveFrameworkID != db.Frameworks[0].ID {
		t.Fatalf("active %q != seeded %q", db.ActiveFrameworkID, db.Frameworks[0].ID)
	}
	if db.Frameworks[0].Name == "" {
		t.Fatalf("seeded framework has empty name")
	}

	// Reloading must not seed a second framework.
	db2, err := s.Load()
	if err != nil {
		t.Fatalf("Load (again): %v", err)
	}
	if len(db2.Frameworks) != 1 {
		t.Fatalf("expected 1 framework after reload; got %d", len(db2.Frameworks))
	}
	if db2.Frameworks[0].ID != db.Frameworks[0].ID {
		t.Fatalf("seeded framework id changed across reloads")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	fw := model.Framework{
		ID:           "bvf-acme",
		Name:         "BVF - Acme - January 2026",
		CreatedAt:    now,
		LastModified: now,
		Labels:       map[string]string{"kpi-row-1": "Churn"},
		Financials:   map[string]string{"growth": "+8% YoY"},
	}
	db.Frameworks = append(db.Frameworks, fw)
	db.ActiveFrameworkID = fw.ID
	db.Items = append(db.Items,
		model.Item{ID: "item-a", FrameworkID: fw.ID, Category: model.CategoryPillar, Text: "Grow revenue", CreatedAt: now},
		model.Item{ID: "item-b", FrameworkID: fw.ID, Category: model.CategoryKPI, Text: "NPS", CreatedAt: now},
	)
	db.Placements = append(db.Placements, model.Placement{
		FrameworkID: fw.ID, SlotKey: "pillar-2", ItemID: "item-a", Category: model.CategoryPillar, PlacedAt: now,
	})

	if err := s.Save(db); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load (after save): %v", err)
	}
	if got.ActiveFrameworkID != fw.ID {
		t.Fatalf("active = %q; want %q", got.ActiveFrameworkID, fw.ID)
	}
	gf, ok := got.FindFramework(fw.ID)
	if !ok {
		t.Fatalf("framework %s missing after reload", fw.ID)
	}
	if gf.Name != fw.Name || gf.Labels["kpi-row-1"] != "Churn" || gf.Financials["growth"] != "+8% YoY" {
		t.Fatalf("framework fields lost: %#v", gf)
	}
	if n := len(got.ItemsFor(fw.ID, model.CategoryAny)); n != 2 {
		t.Fatalf("expected 2 items; got %d", n)
	}
	p, ok := got.PlacementAt(fw.ID, "pillar-2")
	if !ok || p.ItemID != "item-a" {
		t.Fatalf("placement lost: %#v ok=%v", p, ok)
	}
	if txt, ok := got.SlotText(fw.ID, "pillar-2"); !ok || txt != "Grow revenue" {
		t.Fatalf("SlotText = %q ok=%v; want Grow revenue", txt, ok)
	}
}

func TestSaveLoad_PreservesItemOrder(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fwID := db.Frameworks[0].ID
	texts := []string{"first", "second", "third"}
	for _, txt := range texts {
		db.Items = append(db.Items, model.Item{
			ID: NewID(db, "item"), FrameworkID: fwID, Category: model.CategoryStrategy, Text: txt,
		})
	}
	if err := s.Save(db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := got.ItemsFor(fwID, model.CategoryStrategy)
	if len(items) != len(texts) {
		t.Fatalf("expected %d items; got %d", len(texts), len(items))
	}
	for i, it := range items {
		if it.Text != texts[i] {
			t.Fatalf("item %d = %q; want %q (creation order not preserved)", i, it.Text, texts[i])
		}
	}
}

func TestLabel_FallsBackToDefault(t *testing.T) {
	fw := &model.Framework{Labels: map[string]string{"kpi-row-1": "Churn"}}
	if got := Label(fw, "kpi-row-1", "Customer Base"); got != "Churn" {
		t.Fatalf("override ignored: %q", got)
	}
	if got := Label(fw, "kpi-row-2", "Revenue"); got != "Revenue" {
		t.Fatalf("fallback broken: %q", got)
	}
	if got := Label(nil, "kpi-row-3", "EBITDA"); got != "EBITDA" {
		t.Fatalf("nil framework fallback broken: %q", got)
	}
}
