package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bvf-cli/internal/model"
)

// DB is the full workspace state: every framework with its pool and board
// layout, plus the active-framework pointer. It is loaded whole, mutated in
// memory by internal/mutate, and saved whole.
type DB struct {
	Version           int    `json:"version"`
	ActiveFrameworkID string `json:"activeFrameworkId,omitempty"`

	Frameworks []model.Framework `json:"frameworks"`
	Items      []model.Item      `json:"items"`
	Placements []model.Placement `json:"placements"`
}

type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for a project-local .bvf dir.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".bvf")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, ".bvf"), nil
}

func WorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces", name), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// Load reads workspace state from SQLite. A fresh store is seeded with one
// default-named framework: the registry never holds zero frameworks.
func (s Store) Load() (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	db, err := s.loadSQLite(context.Background())
	if err != nil {
		return nil, err
	}
	if s.seedIfEmpty(db) {
		if err := s.Save(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func (s Store) Save(db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.saveSQLite(context.Background(), db)
}

// seedIfEmpty installs the initial framework on first run and repairs a
// dangling or missing active pointer. Reports whether db changed.
func (s Store) seedIfEmpty(db *DB) bool {
	changed := false
	if db.Version == 0 {
		db.Version = 1
		changed = true
	}
	if len(db.Frameworks) == 0 {
		now := time.Now().UTC()
		fw := model.Framework{
			ID:           NewID(db, "bvf"),
			Name:         model.DefaultFrameworkName(now),
			CreatedAt:    now,
			LastModified: now,
		}
		db.Frameworks = append(db.Frameworks, fw)
		db.ActiveFrameworkID = fw.ID
		return true
	}
	if _, ok := db.FindFramework(db.ActiveFrameworkID); !ok {
		db.ActiveFrameworkID = db.Frameworks[0].ID
		changed = true
	}
	return changed
}

func (db *DB) FindFramework(id string) (*model.Framework, bool) {
	for i := range db.Frameworks {
		if db.Frameworks[i].ID == id {
			return &db.Frameworks[i], true
		}
	}
	return nil, false
}

// ActiveFramework returns the framework the UI is editing. A loaded DB
// always has one (Load seeds and repairs the pointer).
func (db *DB) ActiveFramework() (*model.Framework, bool) {
	return db.FindFramework(db.ActiveFrameworkID)
}

func (db *DB) FindItem(id string) (*model.Item, bool) {
	for i := range db.Items {
		if db.Items[i].ID == id {
			return &db.Items[i], true
		}
	}
	return nil, false
}

// ItemsFor returns a framework's pool items for one category, in creation
// order. Pass model.CategoryAny to get the whole pool.
func (db *DB) ItemsFor(frameworkID string, c model.Category) []model.Item {
	var out []model.Item
	for _, it := range db.Items {
		if it.FrameworkID != frameworkID {
			continue
		}
		if c != model.CategoryAny && it.Category != c {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (db *DB) PlacementsFor(frameworkID string) []model.Placement {
	var out []model.Placement
	for _, p := range db.Placements {
		if p.FrameworkID == frameworkID {
			out = append(out, p)
		}
	}
	return out
}

// PlacementAt returns the occupant of a slot, if any.
func (db *DB) PlacementAt(frameworkID, slotKey string) (*model.Placement, bool) {
	for i := range db.Placements {
		if db.Placements[i].FrameworkID == frameworkID && db.Placements[i].SlotKey == slotKey {
			return &db.Placements[i], true
		}
	}
	return nil, false
}

// PlacementOf returns the placement referencing an item, if any. An item
// occupies at most one slot, so the first hit is the only hit.
func (db *DB) PlacementOf(frameworkID, itemID string) (*model.Placement, bool) {
	for i := range db.Placements {
		if db.Placements[i].FrameworkID == frameworkID && db.Placements[i].ItemID == itemID {
			return &db.Placements[i], true
		}
	}
	return nil, false
}

// IsItemPlaced reports whether an item currently occupies a slot.
func (db *DB) IsItemPlaced(frameworkID, itemID string) bool {
	_, ok := db.PlacementOf(frameworkID, itemID)
	return ok
}

// SlotText resolves the display text for a slot: the placed item's current
// pool text, or "" when the slot is empty. A placement whose item has
// vanished resolves to empty rather than stale text.
func (db *DB) SlotText(frameworkID, slotKey string) (string, bool) {
	p, ok := db.PlacementAt(frameworkID, slotKey)
	if !ok {
		return "", false
	}
	it, ok := db.FindItem(p.ItemID)
	if !ok {
		return "", false
	}
	return it.Text, true
}

// Label returns a framework's caption for a label key, falling back to the
// template default when no override is set.
func Label(fw *model.Framework, key, fallback string) string {
	if fw != nil {
		if v, ok := fw.Labels[key]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}
