// Package catalog resolves stories from the built-in collection and from the
// set of uploaded stories kept in storage.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/metcalfc/moonriver/internal/segment"
)

// UploadPrefix starts the id of every uploaded story.
const UploadPrefix = "uploaded-"

const previewLen = 200

// Story is one readable work. Stories are immutable once loaded.
type Story struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Content  string   `json:"content"`
	IsHTML   bool     `json:"isHtml"`
	Keywords []string `json:"keywords,omitempty"`
}

// Uploaded reports whether the story came from the upload set.
func (s Story) Uploaded() bool {
	return strings.HasPrefix(s.ID, UploadPrefix)
}

// Preview returns the first 200 characters of the story's text followed by "...".
func (s Story) Preview() string {
	text := s.Content
	if s.IsHTML {
		text = segment.Text(text)
	}
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= previewLen {
		return text
	}
	return string([]rune(text)[:previewLen]) + "..."
}

// Matches reports whether query is a case-insensitive substring of the
// title, the author or any keyword.
func (s Story) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Author), q) {
		return true
	}
	for _, k := range s.Keywords {
		if strings.Contains(strings.ToLower(k), q) {
			return true
		}
	}
	return false
}

// ContentHash identifies story content, so the same file uploaded twice maps
// to the same story.
func ContentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:16]) // First 16 bytes = 32 hex chars
}
