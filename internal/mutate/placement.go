package mutate

import (
	"strings"
	"time"

	"bvf-cli/internal/model"
	"bvf-cli/internal/store"
	"bvf-cli/internal/template"
)

// BeginDrag opens a drag session for an unplaced pool item, snapshotting
// {id, category, text} at pick-up time. A placed item cannot be picked up:
// the board is the only source of occupancy, so freeing it first (ClearSlot)
// is the way to move it.
func BeginDrag(db *store.DB, frameworkID, itemID string) (*model.DragSession, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	itemID = strings.TrimSpace(itemID)
	if db == nil || frameworkID == "" || itemID == "" {
		return nil, ErrNoDragSession
	}
	if _, ok := db.FindFramework(frameworkID); !ok {
		return nil, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	it, ok := db.FindItem(itemID)
	if !ok || it.FrameworkID != frameworkID {
		return nil, NotFoundError{Kind: "item", ID: itemID}
	}
	if db.IsItemPlaced(frameworkID, itemID) {
		return nil, ErrItemPlaced
	}
	return &model.DragSession{
		FrameworkID: frameworkID,
		ItemID:      it.ID,
		Category:    it.Category,
		Text:        it.Text,
	}, nil
}

type DropResult struct {
	Placement *model.Placement
	// Replaced is the prior occupant's placement, if the drop overwrote one.
	// The replaced item simply returns to the unplaced pool.
	Replaced     *model.Placement
	Changed      bool
	EventPayload map[string]any
}

// Drop resolves an open drag session onto a slot. On category mismatch the
// drop is rejected with no mutation and the session stays open for a retry;
// on success the caller must discard the session (it is consumed).
//
// The session is also re-validated against the live state: the target
// framework and the dragged item must still exist, and the item must still
// be unplaced (any of these can change between pick-up and drop). A session
// carried across a framework switch must be cancelled by the boundary; Drop
// enforces that by checking the session's framework against the db, not
// trusting the snapshot.
func Drop(db *store.DB, sess *model.DragSession, slotKey string) (DropResult, error) {
	if sess == nil {
		return DropResult{}, ErrNoDragSession
	}
	if db == nil {
		return DropResult{}, ErrNoDragSession
	}
	slotKey = strings.TrimSpace(slotKey)
	if _, ok := db.FindFramework(sess.FrameworkID); !ok {
		return DropResult{}, NotFoundError{Kind: "framework", ID: sess.FrameworkID}
	}
	slot, ok := template.FindSlot(slotKey)
	if !ok {
		return DropResult{}, NotFoundError{Kind: "slot", ID: slotKey}
	}
	it, ok := db.FindItem(sess.ItemID)
	if !ok || it.FrameworkID != sess.FrameworkID {
		// Item deleted mid-drag; the session is dead.
		return DropResult{}, NotFoundError{Kind: "item", ID: sess.ItemID}
	}
	if db.IsItemPlaced(sess.FrameworkID, sess.ItemID) {
		// Item got placed since pick-up (another session beat this one);
		// the session is stale. An item occupies at most one slot.
		return DropResult{}, ErrItemPlaced
	}
	if slot.Accepts != model.CategoryAny && it.Category != slot.Accepts {
		return DropResult{}, CategoryMismatchError{SlotKey: slotKey, Wants: slot.Accepts, Got: it.Category}
	}

	now := time.Now().UTC()
	res := DropResult{Changed: true}

	// Last-write-wins per slot: evict any prior occupant.
	if prev, ok := db.PlacementAt(sess.FrameworkID, slotKey); ok {
		prevCopy := *prev
		res.Replaced = &prevCopy
		removePlacement(db, sess.FrameworkID, slotKey)
	}

	db.Placements = append(db.Placements, model.Placement{
		FrameworkID: sess.FrameworkID,
		SlotKey:     slotKey,
		ItemID:      it.ID,
		Category:    it.Category,
		PlacedAt:    now,
	})
	res.Placement = &db.Placements[len(db.Placements)-1]
	touchFramework(db, sess.FrameworkID, now)

	payload := map[string]any{"slotKey": slotKey, "category": string(it.Category)}
	if res.Replaced != nil {
		payload["replacedItemId"] = res.Replaced.ItemID
	}
	res.EventPayload = payload
	return res, nil
}

type ClearResult struct {
	Changed bool
	// Cleared counts removed placements (0 or 1 for ClearSlot; the full
	// board size for ResetLayout).
	Cleared      int
	EventPayload map[string]any
}

// ClearSlot removes a slot's placement if present; clearing an empty slot
// is a no-op, not an error. The freed item becomes draggable again.
func ClearSlot(db *store.DB, frameworkID, slotKey string) (ClearResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	slotKey = strings.TrimSpace(slotKey)
	if db == nil || frameworkID == "" || slotKey == "" {
		return ClearResult{}, nil
	}
	if _, ok := db.FindFramework(frameworkID); !ok {
		return ClearResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if _, ok := db.PlacementAt(frameworkID, slotKey); !ok {
		return ClearResult{Changed: false}, nil
	}
	removePlacement(db, frameworkID, slotKey)
	touchFramework(db, frameworkID, time.Now().UTC())
	return ClearResult{
		Changed:      true,
		Cleared:      1,
		EventPayload: map[string]any{"slotKey": slotKey},
	}, nil
}

// ResetLayout clears every placement of a framework in one operation.
// Confirmation is the boundary layer's job; this does not prompt.
func ResetLayout(db *store.DB, frameworkID string) (ClearResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	if db == nil || frameworkID == "" {
		return ClearResult{}, nil
	}
	if _, ok := db.FindFramework(frameworkID); !ok {
		return ClearResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	kept := db.Placements[:0]
	cleared := 0
	for _, p := range db.Placements {
		if p.FrameworkID == frameworkID {
			cleared++
			continue
		}
		kept = append(kept, p)
	}
	db.Placements = kept
	if cleared == 0 {
		return ClearResult{Changed: false}, nil
	}
	touchFramework(db, frameworkID, time.Now().UTC())
	return ClearResult{
		Changed:      true,
		Cleared:      cleared,
		EventPayload: map[string]any{"cleared": cleared},
	}, nil
}

func removePlacement(db *store.DB, frameworkID, slotKey string) {
	for i := range db.Placements {
		if db.Placements[i].FrameworkID == frameworkID && db.Placements[i].SlotKey == slotKey {
			db.Placements = append(db.Placements[:i], db.Placements[i+1:]...)
			return
		}
	}
}
