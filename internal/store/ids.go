package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// NewID generates a fresh unique id with the given prefix ("bvf", "item").
func NewID(db *DB, prefix string) string {
	for i := 0; i < 10; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !idExists(db, id) {
			return id
		}
	}
	// crypto/rand failed or we collided repeatedly; fall back to a
	// sequential id so callers never get an empty one.
	n := len(db.Frameworks) + len(db.Items) + 1
	for {
		id := fmt.Sprintf("%s-%d", prefix, n)
		if !idExists(db, id) {
			return id
		}
		n++
	}
}

func idExists(db *DB, id string) bool {
	for _, f := range db.Frameworks {
		if f.ID == id {
			return true
		}
	}
	for _, it := range db.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}
