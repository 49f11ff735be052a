package session

import (
	"sync"
	"time"

	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/metcalfc/moonriver/internal/clock"
	"github.com/metcalfc/moonriver/internal/segment"
	"go.uber.org/zap"
)

// DefaultRedirectDelay is how long a missing story is reported before the
// reader is sent back to the catalog.
const DefaultRedirectDelay = time.Second

// State is the navigation state of a Controller.
type State int

const (
	StateLoading State = iota
	StateNotFound
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateNotFound:
		return "not found"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Mode says how a ready story is navigated.
type Mode int

const (
	// ModeChapters navigates by chapter index.
	ModeChapters Mode = iota
	// ModeScroll renders the whole story and tracks a scroll offset.
	ModeScroll
)

// Resolver finds stories by id.
type Resolver interface {
	Resolve(id string) (catalog.Story, bool)
}

// Router navigates back to the catalog.
type Router interface {
	Redirect()
}

// RouterFunc adapts a function to Router.
type RouterFunc func()

func (f RouterFunc) Redirect() { f() }

// Viewport is the scrolling container the story is rendered into.
type Viewport interface {
	ScrollToTop()
}

// Options configure a Controller. Zero values select defaults.
type Options struct {
	Scheduler     clock.Scheduler
	Router        Router
	Viewport      Viewport
	RedirectDelay time.Duration
	Logger        *zap.Logger
}

// Controller owns the reading state of one open story.
type Controller struct {
	resolver      Resolver
	positions     *PositionTracker
	sched         clock.Scheduler
	router        Router
	viewport      Viewport
	redirectDelay time.Duration
	log           *zap.Logger

	mu             sync.Mutex
	gen            uint64
	state          State
	story          catalog.Story
	content        string
	layout         segment.Result
	chapter        int
	scroll         float64
	cancelRedirect clock.CancelFunc
}

// NewController returns a Controller in the Loading state.
func NewController(resolver Resolver, positions *PositionTracker, opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real()
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		resolver:      resolver,
		positions:     positions,
		sched:         opts.Scheduler,
		router:        opts.Router,
		viewport:      opts.Viewport,
		redirectDelay: opts.RedirectDelay,
		log:           opts.Logger,
		state:         StateLoading,
	}
}

// SetViewport replaces the container reset by chapter changes.
func (c *Controller) SetViewport(v Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = v
}

// Open resolves a story and hydrates the saved position. A missing story
// moves to NotFound and schedules a single redirect to the catalog.
func (c *Controller) Open(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopRedirectLocked()
	c.gen++
	c.state = StateLoading
	c.story = catalog.Story{}
	c.content = ""
	c.layout = segment.Result{}
	c.chapter = 0
	c.scroll = 0

	story, ok := c.resolver.Resolve(id)
	if !ok {
		c.state = StateNotFound
		c.log.Debug("story not found", zap.String("story", id))
		gen := c.gen
		c.cancelRedirect = c.sched.After(c.redirectDelay, func() { c.redirect(gen) })
		return c.state
	}

	content := story.Content
	if story.IsHTML {
		content = segment.Sanitize(content)
	}
	c.story = story
	c.content = content
	c.layout = segment.Split(content, story.IsHTML)

	// A scroll offset still waiting in the debouncer is newer than the store.
	c.positions.Commit(id)
	if c.layout.Segmented() {
		c.chapter, _ = c.positions.LoadChapter(id, len(c.layout.Chapters))
	} else {
		c.scroll, _ = c.positions.LoadScroll(id)
	}
	c.state = StateReady
	c.log.Debug("story ready",
		zap.String("story", id),
		zap.Int("chapters", len(c.layout.Chapters)),
		zap.Int("chapter", c.chapter),
		zap.Float64("scroll", c.scroll))
	return c.state
}

func (c *Controller) redirect(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateNotFound || c.cancelRedirect == nil {
		c.mu.Unlock()
		return
	}
	c.cancelRedirect = nil
	router := c.router
	c.mu.Unlock()

	c.log.Debug("redirecting to catalog")
	if router != nil {
		router.Redirect()
	}
}

func (c *Controller) stopRedirectLocked() {
	if c.cancelRedirect != nil {
		c.cancelRedirect()
		c.cancelRedirect = nil
	}
}

// GoToChapter moves to chapter target and saves it. Targets outside
// [0, ChapterCount()-1] are ignored and false is returned.
func (c *Controller) GoToChapter(target int) bool {
	c.mu.Lock()
	if c.state != StateReady || target < 0 || target >= len(c.layout.Chapters) {
		c.mu.Unlock()
		return false
	}
	c.chapter = target
	c.scroll = 0
	id := c.story.ID
	viewport := c.viewport
	c.mu.Unlock()

	if err := c.positions.SaveChapter(id, target); err != nil {
		c.log.Warn("chapter position not saved", zap.String("story", id), zap.Error(err))
	}
	if viewport != nil {
		viewport.ScrollToTop()
	}
	return true
}

// Next moves to the following chapter.
func (c *Controller) Next() bool {
	return c.GoToChapter(c.Chapter() + 1)
}

// Prev moves to the preceding chapter.
func (c *Controller) Prev() bool {
	return c.GoToChapter(c.Chapter() - 1)
}

// CanNext reports whether Next would move.
func (c *Controller) CanNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady && c.chapter+1 < len(c.layout.Chapters)
}

// CanPrev reports whether Prev would move.
func (c *Controller) CanPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady && len(c.layout.Chapters) > 0 && c.chapter > 0
}

// Scroll records the viewport offset. In scroll mode the offset is saved
// through the debounced writer.
func (c *Controller) Scroll(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return
	}
	c.scroll = offset
	if !c.layout.Segmented() {
		c.positions.SaveScroll(c.story.ID, offset)
	}
}

// Flush commits any pending scroll write.
func (c *Controller) Flush() {
	c.positions.Flush()
}

// Close tears the session down: the pending redirect and any pending scroll
// write are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopRedirectLocked()
	if c.story.ID != "" {
		c.positions.Discard(c.story.ID)
	}
}

// State returns the current navigation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Story returns the open story.
func (c *Controller) Story() catalog.Story {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.story
}

// Mode returns how the open story is navigated.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.layout.Segmented() {
		return ModeChapters
	}
	return ModeScroll
}

// Chapter returns the current chapter index.
func (c *Controller) Chapter() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chapter
}

// ChapterCount returns the number of chapters, zero in scroll mode.
func (c *Controller) ChapterCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.layout.Chapters)
}

// ScrollOffset returns the last recorded or restored scroll offset.
func (c *Controller) ScrollOffset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll
}

// Page returns the content to render: the current chapter, followed by the
// footer on the last chapter, or the whole story in scroll mode.
func (c *Controller) Page() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ""
	}
	if !c.layout.Segmented() {
		return c.content
	}
	page := c.layout.Chapters[c.chapter]
	if c.chapter == len(c.layout.Chapters)-1 && c.layout.Footer != "" {
		page += "\n" + c.layout.Footer
	}
	return page
}

// TOC returns the table of contents of the open story.
func (c *Controller) TOC() []segment.Entry {
	c.mu.Lock()
	chapters := c.layout.Chapters
	c.mu.Unlock()
	return segment.TOC(chapters)
}
