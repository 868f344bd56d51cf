package mutate

import (
	"strings"
	"time"

	"bvf-cli/internal/model"
	"bvf-cli/internal/store"
)

type ItemResult struct {
	Item         *model.Item
	Changed      bool
	EventPayload map[string]any
}

// AddItem appends a new empty item to a framework's category pool.
// Callers are responsible for saving db and appending the item.add event.
func AddItem(db *store.DB, frameworkID string, category model.Category) (ItemResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	if db == nil || frameworkID == "" {
		return ItemResult{}, nil
	}
	if _, ok := db.FindFramework(frameworkID); !ok {
		return ItemResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if !category.Valid() {
		return ItemResult{}, ValidationError{Field: "category", Reason: "unknown category " + string(category)}
	}

	now := time.Now().UTC()
	it := model.Item{
		ID:          store.NewID(db, "item"),
		FrameworkID: frameworkID,
		Category:    category,
		Text:        "",
		CreatedAt:   now,
	}
	db.Items = append(db.Items, it)
	touchFramework(db, frameworkID, now)

	added := &db.Items[len(db.Items)-1]
	return ItemResult{
		Item:         added,
		Changed:      true,
		EventPayload: map[string]any{"category": string(category)},
	}, nil
}

// SetItemText replaces an item's text in place, preserving id and pool
// position. A missing item is an idempotent no-op (the item may have been
// removed by a concurrent gesture). Placements reference items by id, so
// the board picks the new text up on the next read with no propagation.
func SetItemText(db *store.DB, frameworkID, itemID, text string) (ItemResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	itemID = strings.TrimSpace(itemID)
	if db == nil || frameworkID == "" || itemID == "" {
		return ItemResult{}, nil
	}
	if _, ok := db.FindFramework(frameworkID); !ok {
		return ItemResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}

	it, ok := db.FindItem(itemID)
	if !ok || it.FrameworkID != frameworkID {
		return ItemResult{Changed: false}, nil
	}
	if it.Text == text {
		return ItemResult{Item: it, Changed: false}, nil
	}
	it.Text = text
	touchFramework(db, frameworkID, time.Now().UTC())
	return ItemResult{
		Item:         it,
		Changed:      true,
		EventPayload: map[string]any{"text": text},
	}, nil
}

type RemoveItemResult struct {
	Changed bool
	// ClearedSlots lists slot keys vacated by the cascade (0 or 1 entries:
	// an item occupies at most one slot).
	ClearedSlots []string
	EventPayload map[string]any
}

// RemoveItem deletes an item from its pool and cascades: any placement
// referencing it is deleted in the same call, so no slot is ever left
// dangling. A missing item is an idempotent no-op.
func RemoveItem(db *store.DB, frameworkID, itemID string) (RemoveItemResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	itemID = strings.TrimSpace(itemID)
	if db == nil || frameworkID == "" || itemID == "" {
		return RemoveItemResult{}, nil
	}
	if _, ok := db.FindFramework(frameworkID); !ok {
		return RemoveItemResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}

	idx := -1
	for i := range db.Items {
		if db.Items[i].ID == itemID && db.Items[i].FrameworkID == frameworkID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return RemoveItemResult{Changed: false}, nil
	}
	db.Items = append(db.Items[:idx], db.Items[idx+1:]...)

	var cleared []string
	kept := db.Placements[:0]
	for _, p := range db.Placements {
		if p.FrameworkID == frameworkID && p.ItemID == itemID {
			cleared = append(cleared, p.SlotKey)
			continue
		}
		kept = append(kept, p)
	}
	db.Placements = kept

	touchFramework(db, frameworkID, time.Now().UTC())
	return RemoveItemResult{
		Changed:      true,
		ClearedSlots: cleared,
		EventPayload: map[string]any{"clearedSlots": cleared},
	}, nil
}
