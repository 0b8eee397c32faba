// Package store is the path-addressed document tree the UI reads from. Every
// value lives under users/{uid}/{section} and each write notifies watchers
// of that user.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when nothing is stored at the path
var ErrNotFound = errors.New("store: path not found")

// Sections stored per user
const (
	SectionInventory    = "inventory"
	SectionRecipes      = "recipes"
	SectionShoppingList = "shopping_list"
	SectionPreferences  = "preferences"
)

// Change describes one write. Value is nil when the path was deleted.
type Change struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Gateway reads and writes JSON documents by path. Writes are full
// replacements and the last one wins.
type Gateway interface {
	Get(ctx context.Context, path string, dst any) error
	Set(ctx context.Context, path string, v any) error
	Delete(ctx context.Context, path string) error
	// Watch streams changes under users/{userID} until ctx is done
	Watch(ctx context.Context, userID string) (<-chan Change, error)
}

// UserPath returns the path of section for userID
func UserPath(userID, section string) string {
	return "users/" + userID + "/" + section
}

// userFromPath returns the user segment of a users/{uid}/... path
func userFromPath(path string) (string, bool) {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 || parts[0] != "users" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func validPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("store: empty path")
	}
	return nil
}
