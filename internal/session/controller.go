package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/radial"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

var (
	ErrUnknownQuestion = errors.New("session: unknown question id")
	ErrScoreRange      = fmt.Errorf("session: score must be within %d..%d", scorecard.MinScore, scorecard.MaxScore)
)

type Option func(*Controller)

// WithDebounce sets how long Resize waits for the size to settle. Zero
// applies every resize immediately.
func WithDebounce(d time.Duration) Option { return func(c *Controller) { c.debounce = d } }

func WithLayout(o radial.Options) Option { return func(c *Controller) { c.layout = o } }

// WithIDs replaces the session id generator.
func WithIDs(f func() string) Option { return func(c *Controller) { c.newID = f } }

// WithObserver registers a hook called with every new state. It runs under
// the controller lock and must not call back into the controller.
func WithObserver(f func(*State)) Option { return func(c *Controller) { c.observe = f } }

// Controller owns the current State. Data changes (catalog, answers, results)
// recompute pages, cells and geometry; a resize recomputes geometry only.
type Controller struct {
	mu  sync.Mutex
	cur *State

	layout   radial.Options
	debounce time.Duration
	newID    func() string
	observe  func(*State)

	pending *radial.Size
	timer   *time.Timer
	closed  bool
}

// New starts a session with an empty catalog.
func New(opts ...Option) *Controller {
	c := &Controller{
		layout:   radial.DefaultOptions(),
		debounce: 150 * time.Millisecond,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	c.cur = c.fresh(radial.Size{})
	return c
}

// State returns the current snapshot.
func (c *Controller) State() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Load replaces the catalog and drops all answers and results.
func (c *Controller) Load(cat catalog.Catalog) *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.cur.next()
	n.Catalog = cat
	n.Sectors = cat.Sectors()
	n.Pages = scorecard.BuildPages(cat.Rows(), n.Sectors)
	n.Submitted = false
	n.responses = map[string]int{}
	c.rescore(n)
	return c.publish(n)
}

// LoadResult replaces the scored result, e.g. one restored from storage.
func (c *Controller) LoadResult(res scorecard.Result) *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.cur.next()
	n.Result = res
	n.Submitted = true
	c.aggregate(n)
	return c.publish(n)
}

// Answer records a score for a question on one of the current pages.
func (c *Controller) Answer(questionID string, score int) (*State, error) {
	id := strings.ToLower(strings.TrimSpace(questionID))
	if score < scorecard.MinScore || score > scorecard.MaxScore {
		return nil, ErrScoreRange
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cur.pageIDs()[id] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	n := c.cur.next()
	n.responses = make(map[string]int, len(c.cur.responses)+1)
	for k, v := range c.cur.responses {
		n.responses[k] = v
	}
	n.responses[id] = score
	n.Submitted = false
	c.rescore(n)
	return c.publish(n), nil
}

// Submit marks the answers as submitted and returns the scoring request.
func (c *Controller) Submit() (*State, scorecard.Submission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.cur.next()
	n.Submitted = true
	return c.publish(n), n.Submission()
}

// Resize schedules a geometry recompute for size once resizing settles.
func (c *Controller) Resize(size radial.Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pending = &size
	if c.debounce <= 0 {
		c.applyResize()
		return
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, func() { c.Flush() })
		return
	}
	c.timer.Reset(c.debounce)
}

// Flush applies a pending resize now and returns the current state.
func (c *Controller) Flush() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.applyResize()
	return c.cur
}

// Reset discards everything and starts a new session at the current size.
func (c *Controller) Reset() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	size := c.cur.Size
	if c.pending != nil {
		size = *c.pending
		c.pending = nil
	}
	n := c.fresh(size)
	n.Revision = c.cur.Revision + 1
	return c.publish(n)
}

// Close stops the resize timer. Later resizes are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
	}
}

func (c *Controller) fresh(size radial.Size) *State {
	return &State{
		ID:        c.newID(),
		Catalog:   catalog.New(nil, ""),
		Sectors:   []string{},
		Pages:     []scorecard.QuestionSet{},
		Result:    scorecard.Result{},
		Size:      size,
		responses: map[string]int{},
		grids:     map[string]scorecard.Grid{},
		diagrams:  map[string]radial.Diagram{},
	}
}

func (c *Controller) applyResize() {
	if c.pending == nil {
		return
	}
	n := c.cur.next()
	n.Size = *c.pending
	c.pending = nil
	c.layoutAll(n)
	c.publish(n)
}

func (c *Controller) rescore(n *State) {
	if len(n.Catalog.Questions) == 0 {
		n.Result = scorecard.Result{}
	} else {
		n.Result = scorecard.ScoreResponses(n.Submission())
	}
	c.aggregate(n)
}

func (c *Controller) aggregate(n *State) {
	n.grids = make(map[string]scorecard.Grid, len(n.Result))
	for _, s := range n.Result.Sectors() {
		canon := scorecard.NormalizeSector(s, "")
		if _, done := n.grids[canon]; done {
			continue
		}
		g, err := scorecard.Aggregate(n.Result.Rows(canon), canon)
		if err != nil {
			continue
		}
		n.grids[canon] = g
	}
	c.layoutAll(n)
}

func (c *Controller) layoutAll(n *State) {
	n.diagrams = make(map[string]radial.Diagram, len(n.grids))
	for s, g := range n.grids {
		n.diagrams[s] = radial.Build(g, n.Size, c.layout)
	}
}

func (c *Controller) publish(n *State) *State {
	c.cur = n
	if c.observe != nil {
		c.observe(n)
	}
	return n
}
