package mutate

import (
	"errors"
	"fmt"

	"bvf-cli/internal/model"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError rejects an operation with an unusable required field
// (e.g. empty framework name). The state is untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CategoryMismatchError rejects a drop whose item category does not match
// the slot's declared category. The drag session stays open so the caller
// can retry on another slot or cancel.
type CategoryMismatchError struct {
	SlotKey string
	Wants   model.Category
	Got     model.Category
}

func (e CategoryMismatchError) Error() string {
	return fmt.Sprintf("slot %s only accepts %s items (dragging %s)", e.SlotKey, e.Wants, e.Got)
}

var (
	// ErrItemPlaced rejects picking up an item that already occupies a
	// slot, and dropping a stale session whose item was placed after
	// pick-up. An item occupies at most one slot.
	ErrItemPlaced = errors.New("item is already placed on the board")

	// ErrNoDragSession rejects a drop with no open drag session.
	ErrNoDragSession = errors.New("no open drag session")

	// ErrLastFramework guards deletion of the only remaining framework.
	ErrLastFramework = errors.New("cannot delete the last remaining framework")

	// ErrStaleDeleteToken rejects a confirm whose framework changed since
	// the delete was requested.
	ErrStaleDeleteToken = errors.New("delete confirmation token is stale")
)
