// Package storage provides the key/value port that reading state is persisted through.
package storage

import (
	"errors"
	"strings"
)

// Persisted key layout.
const (
	SettingsKey    = "reading-settings"
	BookmarkPrefix = "reading-bookmark-"
	UploadsKey     = "uploaded-stories"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a synchronous string key/value store.
// Get reports false when the key has never been written.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Backend is a Store that holds resources until closed.
type Backend interface {
	Store
	Close() error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys() ([]string, error)
}

// BookmarkKey returns the key holding the reading position for a story.
func BookmarkKey(storyID string) string {
	return BookmarkPrefix + storyID
}

// StoryIDFromKey returns the story id encoded in a bookmark key.
func StoryIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, BookmarkPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, BookmarkPrefix)
	return id, id != ""
}
