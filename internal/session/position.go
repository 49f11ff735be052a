package session

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/metcalfc/moonriver/internal/debounce"
	"github.com/metcalfc/moonriver/internal/storage"
	"go.uber.org/zap"
)

// PositionTracker persists the reader's place in each story, under
// storage.BookmarkKey. Chapter indexes are written as integers, scroll
// offsets as floats.
type PositionTracker struct {
	store  storage.Store
	writer *debounce.Writer
	delay  time.Duration
	log    *zap.Logger
}

// NewPositionTracker returns a tracker writing through store. Scroll offsets
// are coalesced by writer with the given quiet period.
func NewPositionTracker(store storage.Store, writer *debounce.Writer, delay time.Duration, log *zap.Logger) *PositionTracker {
	if log == nil {
		log = zap.NewNop()
	}
	if writer == nil {
		writer = debounce.NewWriter(nil, log)
	}
	if delay <= 0 {
		delay = debounce.DefaultDelay
	}
	return &PositionTracker{store: store, writer: writer, delay: delay, log: log}
}

// Load returns the saved position for storyID. Missing entries and entries
// that are not finite numbers read as absent.
func (t *PositionTracker) Load(storyID string) (float64, bool) {
	raw, ok := t.store.Get(storage.BookmarkKey(storyID))
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		t.log.Warn("ignoring corrupt bookmark", zap.String("story", storyID), zap.String("value", raw))
		return 0, false
	}
	return v, true
}

// LoadChapter returns the saved chapter index for a story with count
// chapters, clamped into [0, count-1]. Non-integral values read as absent.
func (t *PositionTracker) LoadChapter(storyID string, count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	v, ok := t.Load(storyID)
	if !ok {
		return 0, false
	}
	if v != math.Trunc(v) {
		t.log.Warn("ignoring non-integral chapter bookmark", zap.String("story", storyID), zap.Float64("value", v))
		return 0, false
	}
	idx := int(min(max(v, 0), float64(count-1)))
	return idx, true
}

// LoadScroll returns the saved scroll offset. Negative offsets read as absent.
func (t *PositionTracker) LoadScroll(storyID string) (float64, bool) {
	v, ok := t.Load(storyID)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// SaveChapter writes a chapter index immediately.
func (t *PositionTracker) SaveChapter(storyID string, index int) error {
	key := storage.BookmarkKey(storyID)
	// A pending scroll write for the same story must not overwrite the chapter.
	t.writer.Cancel(key)
	if err := t.store.Set(key, strconv.Itoa(index)); err != nil {
		return fmt.Errorf("save bookmark %s: %w", storyID, err)
	}
	return nil
}

// SaveScroll schedules a debounced write of a scroll offset.
func (t *PositionTracker) SaveScroll(storyID string, offset float64) {
	key := storage.BookmarkKey(storyID)
	value := strconv.FormatFloat(offset, 'f', -1, 64)
	t.writer.Schedule(key, t.delay, func() {
		if err := t.store.Set(key, value); err != nil {
			t.log.Warn("scroll position not saved", zap.String("story", storyID), zap.Error(err))
		}
	})
}

// Flush commits pending scroll writes now.
func (t *PositionTracker) Flush() {
	t.writer.Flush()
}

// Commit writes the pending scroll offset for storyID now, if any.
func (t *PositionTracker) Commit(storyID string) {
	t.writer.FlushKey(storage.BookmarkKey(storyID))
}

// Discard drops the pending scroll write for storyID.
func (t *PositionTracker) Discard(storyID string) {
	t.writer.Cancel(storage.BookmarkKey(storyID))
}
