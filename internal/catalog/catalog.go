package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/metcalfc/moonriver/internal/storage"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when no story has the requested id.
var ErrNotFound = errors.New("story not found")

// Catalog lists built-in stories followed by uploaded ones.
type Catalog struct {
	builtin []Story
	store   storage.Store
	log     *zap.Logger

	mu      sync.Mutex
	entropy *rand.Rand
}

// New returns a Catalog over the embedded stories and the upload set in store.
func New(store storage.Store, log *zap.Logger) (*Catalog, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	return NewWithStories(builtin, store, log), nil
}

// NewWithStories returns a Catalog whose built-in collection is stories.
func NewWithStories(stories []Story, store storage.Store, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		builtin: stories,
		store:   store,
		log:     log,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// List returns every story, built-ins first.
func (c *Catalog) List() []Story {
	uploads := c.Uploads()
	out := make([]Story, 0, len(c.builtin)+len(uploads))
	out = append(out, c.builtin...)
	return append(out, uploads...)
}

// Uploads returns the persisted upload set. A missing or malformed entry
// reads as empty.
func (c *Catalog) Uploads() []Story {
	raw, ok := c.store.Get(storage.UploadsKey)
	if !ok {
		return nil
	}
	var stories []Story
	if err := json.Unmarshal([]byte(raw), &stories); err != nil {
		c.log.Warn("ignoring malformed upload set", zap.Error(err))
		return nil
	}
	return stories
}

// Resolve finds a story by id.
func (c *Catalog) Resolve(id string) (Story, bool) {
	for _, s := range c.List() {
		if s.ID == id {
			return s, true
		}
	}
	return Story{}, false
}

// Get is Resolve with an error for missing stories.
func (c *Catalog) Get(id string) (Story, error) {
	s, ok := c.Resolve(id)
	if !ok {
		return Story{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Search returns stories whose title, author or keywords contain query.
func (c *Catalog) Search(query string) []Story {
	var out []Story
	for _, s := range c.List() {
		if s.Matches(query) {
			out = append(out, s)
		}
	}
	return out
}

// AddUpload appends s to the upload set under a fresh "uploaded-" id. If a
// story with identical content was already uploaded, that story is returned
// and nothing is written; added reports which happened.
func (c *Catalog) AddUpload(s Story) (stored Story, added bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uploads := c.Uploads()
	hash := ContentHash(s.Content)
	for _, u := range uploads {
		if ContentHash(u.Content) == hash {
			return u, false, nil
		}
	}

	s.ID = c.newID()
	uploads = append(uploads, s)

	data, err := json.Marshal(uploads)
	if err != nil {
		return Story{}, false, fmt.Errorf("encode uploads: %w", err)
	}
	if err := c.store.Set(storage.UploadsKey, string(data)); err != nil {
		return Story{}, false, fmt.Errorf("save uploads: %w", err)
	}

	c.log.Info("story uploaded", zap.String("id", s.ID), zap.String("title", s.Title))
	return s, true, nil
}

func (c *Catalog) newID() string {
	return UploadPrefix + ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
}
