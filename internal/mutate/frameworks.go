package mutate

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"bvf-cli/internal/model"
	"bvf-cli/internal/store"
	"bvf-cli/internal/template"
)

type FrameworkResult struct {
	Framework    *model.Framework
	Changed      bool
	EventPayload map[string]any
}

// CreateFramework adds a new framework and makes it the active one.
// The name is required; callers that want a placeholder pass
// model.DefaultFrameworkName themselves.
func CreateFramework(db *store.DB, name string) (FrameworkResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FrameworkResult{}, ValidationError{Field: "name", Reason: "must not be empty"}
	}
	now := time.Now().UTC()
	fw := model.Framework{
		ID:           store.NewID(db, "bvf"),
		Name:         name,
		CreatedAt:    now,
		LastModified: now,
	}
	db.Frameworks = append(db.Frameworks, fw)
	db.ActiveFrameworkID = fw.ID
	return FrameworkResult{
		Framework:    &db.Frameworks[len(db.Frameworks)-1],
		Changed:      true,
		EventPayload: map[string]any{"name": name},
	}, nil
}

// DeleteRequest is the first half of framework deletion. Nothing is
// mutated; the caller presents the framework to the user and, on
// confirmation, passes the token back to ConfirmDelete. The token is
// bound to the framework's current LastModified, so any mutation in
// between invalidates it.
type DeleteRequest struct {
	Framework *model.Framework
	Token     string
	// ItemCount and PlacementCount size the cascade for the prompt.
	ItemCount      int
	PlacementCount int
}

// RequestDelete validates that a framework may be deleted and returns a
// confirmation token. Deleting the last remaining framework is refused
// up front so the prompt is never shown for it.
func RequestDelete(db *store.DB, frameworkID string) (DeleteRequest, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	fw, ok := db.FindFramework(frameworkID)
	if !ok {
		return DeleteRequest{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if len(db.Frameworks) <= 1 {
		return DeleteRequest{}, ErrLastFramework
	}
	req := DeleteRequest{
		Framework: fw,
		Token:     deleteToken(fw),
	}
	for _, it := range db.Items {
		if it.FrameworkID == frameworkID {
			req.ItemCount++
		}
	}
	for _, p := range db.Placements {
		if p.FrameworkID == frameworkID {
			req.PlacementCount++
		}
	}
	return req, nil
}

type DeleteResult struct {
	// NewActiveID is the framework promoted to active when the deleted one
	// held that role, otherwise the unchanged active id.
	NewActiveID  string
	RemovedItems int
	RemovedSlots int
	EventPayload map[string]any
}

// ConfirmDelete performs the deletion authorized by RequestDelete. The
// framework's items and placements go with it. If the deleted framework
// was active, the first remaining framework in collection order takes
// over.
func ConfirmDelete(db *store.DB, frameworkID, token string) (DeleteResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	fw, ok := db.FindFramework(frameworkID)
	if !ok {
		return DeleteResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if len(db.Frameworks) <= 1 {
		return DeleteResult{}, ErrLastFramework
	}
	if token != deleteToken(fw) {
		return DeleteResult{}, ErrStaleDeleteToken
	}

	res := DeleteResult{}
	keptItems := db.Items[:0]
	for _, it := range db.Items {
		if it.FrameworkID == frameworkID {
			res.RemovedItems++
			continue
		}
		keptItems = append(keptItems, it)
	}
	db.Items = keptItems

	keptPlacements := db.Placements[:0]
	for _, p := range db.Placements {
		if p.FrameworkID == frameworkID {
			res.RemovedSlots++
			continue
		}
		keptPlacements = append(keptPlacements, p)
	}
	db.Placements = keptPlacements

	for i := range db.Frameworks {
		if db.Frameworks[i].ID == frameworkID {
			db.Frameworks = append(db.Frameworks[:i], db.Frameworks[i+1:]...)
			break
		}
	}
	if db.ActiveFrameworkID == frameworkID {
		db.ActiveFrameworkID = db.Frameworks[0].ID
	}
	res.NewActiveID = db.ActiveFrameworkID
	res.EventPayload = map[string]any{
		"name":         fw.Name,
		"removedItems": res.RemovedItems,
		"newActiveId":  res.NewActiveID,
	}
	return res, nil
}

// SetActiveFramework switches which framework mutations and the board
// target. Re-selecting the current one is a no-op.
func SetActiveFramework(db *store.DB, frameworkID string) (FrameworkResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	fw, ok := db.FindFramework(frameworkID)
	if !ok {
		return FrameworkResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if db.ActiveFrameworkID == frameworkID {
		return FrameworkResult{Framework: fw, Changed: false}, nil
	}
	db.ActiveFrameworkID = frameworkID
	return FrameworkResult{
		Framework:    fw,
		Changed:      true,
		EventPayload: map[string]any{"name": fw.Name},
	}, nil
}

// RenameFramework sets a framework's display name. Blank names are
// rejected rather than silently restored to a default.
func RenameFramework(db *store.DB, frameworkID, name string) (FrameworkResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	name = strings.TrimSpace(name)
	fw, ok := db.FindFramework(frameworkID)
	if !ok {
		return FrameworkResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if name == "" {
		return FrameworkResult{}, ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if fw.Name == name {
		return FrameworkResult{Framework: fw, Changed: false}, nil
	}
	old := fw.Name
	fw.Name = name
	touchFramework(db, frameworkID, time.Now().UTC())
	return FrameworkResult{
		Framework:    fw,
		Changed:      true,
		EventPayload: map[string]any{"from": old, "to": name},
	}, nil
}

// SetCustomLabel overrides a KPI row caption on one framework. An empty
// value removes the override, restoring the built-in caption.
func SetCustomLabel(db *store.DB, frameworkID, key, value string) (FrameworkResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	fw, ok := db.FindFramework(frameworkID)
	if !ok {
		return FrameworkResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if _, ok := template.DefaultLabel(key); !ok {
		return FrameworkResult{}, ValidationError{Field: "key", Reason: "unknown label key " + key}
	}
	if value == "" {
		if _, has := fw.Labels[key]; !has {
			return FrameworkResult{Framework: fw, Changed: false}, nil
		}
		delete(fw.Labels, key)
	} else {
		if fw.Labels == nil {
			fw.Labels = map[string]string{}
		}
		if fw.Labels[key] == value {
			return FrameworkResult{Framework: fw, Changed: false}, nil
		}
		fw.Labels[key] = value
	}
	touchFramework(db, frameworkID, time.Now().UTC())
	return FrameworkResult{
		Framework:    fw,
		Changed:      true,
		EventPayload: map[string]any{"key": key, "value": value},
	}, nil
}

// SetFinancial sets one of the framework's financial summary lines.
// Empty text is allowed; the line renders blank.
func SetFinancial(db *store.DB, frameworkID, key, value string) (FrameworkResult, error) {
	frameworkID = strings.TrimSpace(frameworkID)
	key = strings.TrimSpace(key)
	fw, ok := db.FindFramework(frameworkID)
	if !ok {
		return FrameworkResult{}, NotFoundError{Kind: "framework", ID: frameworkID}
	}
	if _, ok := template.FinancialLabel(key); !ok {
		return FrameworkResult{}, ValidationError{Field: "key", Reason: "unknown financial key " + key}
	}
	if fw.Financials == nil {
		fw.Financials = map[string]string{}
	}
	if fw.Financials[key] == value {
		return FrameworkResult{Framework: fw, Changed: false}, nil
	}
	fw.Financials[key] = value
	touchFramework(db, frameworkID, time.Now().UTC())
	return FrameworkResult{
		Framework:    fw,
		Changed:      true,
		EventPayload: map[string]any{"key": key},
	}, nil
}

// Touch bumps a framework's LastModified without other changes. Any
// touch between RequestDelete and ConfirmDelete voids the pending token.
func Touch(db *store.DB, frameworkID string) error {
	frameworkID = strings.TrimSpace(frameworkID)
	if _, ok := db.FindFramework(frameworkID); !ok {
		return NotFoundError{Kind: "framework", ID: frameworkID}
	}
	touchFramework(db, frameworkID, time.Now().UTC())
	return nil
}

func touchFramework(db *store.DB, frameworkID string, now time.Time) {
	for i := range db.Frameworks {
		if db.Frameworks[i].ID == frameworkID {
			db.Frameworks[i].LastModified = now
			return
		}
	}
}

// deleteToken binds a confirmation to the framework's state at request
// time. Any touch between request and confirm changes LastModified and
// voids the token.
func deleteToken(fw *model.Framework) string {
	sum := sha256.Sum256([]byte(fw.ID + "\x00" + fw.LastModified.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:6])
}
