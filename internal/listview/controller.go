package listview

import (
	"sort"
	"time"

	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/paging"
)

// DefaultDebounce collapses bursts of filter edits into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Status is the load state of the list.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Page is the list currently on display. It is replaced wholesale on every
// applied response.
type Page struct {
	Items       []dahell.Opportunity
	CurrentPage int
	Total       paging.Total
	Visual      bool
}

// Request is a list query to execute. Seq must be echoed in the Response.
type Request struct {
	Seq   uint64
	Query Query
}

// VisualRequest is an image search to execute.
type VisualRequest struct {
	Seq  uint64
	Path string
}

// Response is the outcome of a Request or VisualRequest.
type Response struct {
	Seq   uint64
	Items []dahell.Opportunity
	Err   error
}

// Debounce identifies a pending debounced reload.
type Debounce struct {
	Gen   uint64
	After time.Duration
}

// StatBucket counts items on the loaded page sharing a competitor count.
type StatBucket struct {
	Competitors int
	Count       int
	Level       dahell.Level
}

// Options configure a Controller.
type Options struct {
	PageSize    int
	Debounce    time.Duration
	Competitors paging.Range
}

// Controller owns the list query and the displayed page. It is driven from a
// single goroutine and is not safe for concurrent use.
type Controller struct {
	query    Query
	saved    Query
	debounce time.Duration

	page   Page
	status Status
	err    error
	stats  []StatBucket

	seq         uint64
	debounceGen uint64

	visual     bool
	visualPath string
}

// New builds a Controller in the Idle state.
func New(opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	r := opts.Competitors
	if r == (paging.Range{}) {
		r = DefaultPreset.Range
	}
	q := Query{Competitors: r, PageSize: opts.PageSize}.normalized()
	return &Controller{
		query:    q,
		debounce: opts.Debounce,
		page:     Page{CurrentPage: 1},
	}
}

// Query returns a copy of the current query.
func (c *Controller) Query() Query { return c.query.clone() }

// Page returns the displayed page.
func (c *Controller) Page() Page { return c.page }

// Status returns the load state.
func (c *Controller) Status() Status { return c.status }

// Err returns the error of the last failed load.
func (c *Controller) Err() error { return c.err }

// Visual reports whether the list shows image-search results.
func (c *Controller) Visual() bool { return c.visual }

// VisualPath is the image behind the current visual results.
func (c *Controller) VisualPath() string { return c.visualPath }

// FiltersEnabled reports whether filter and paging controls accept input.
func (c *Controller) FiltersEnabled() bool { return !c.visual }

// SetFilter applies filters, resets to page 1 and schedules a reload. The
// returned ticket must be passed to DebounceElapsed once After has passed;
// only the most recent ticket produces a reload. Filters are ignored in
// visual mode.
func (c *Controller) SetFilter(filters ...Filter) (Debounce, bool) {
	if c.visual {
		return Debounce{}, false
	}
	for _, f := range filters {
		if f != nil {
			f(&c.query)
		}
	}
	c.query.Page = 1
	c.query = c.query.normalized()
	c.debounceGen++
	return Debounce{Gen: c.debounceGen, After: c.debounce}, true
}

// DebounceElapsed returns the reload for gen if no newer filter edit has
// happened since.
func (c *Controller) DebounceElapsed(gen uint64) (Request, bool) {
	if gen != c.debounceGen || c.visual {
		return Request{}, false
	}
	return c.Reload(), true
}

// TotalPages is derived from the estimated total of the displayed page.
func (c *Controller) TotalPages() int {
	if c.visual {
		return 1
	}
	return paging.TotalPages(c.page.Total.Count, c.query.PageSize)
}

// GoToPage reloads page n immediately. Out of range pages and visual mode
// are no-ops.
func (c *Controller) GoToPage(n int) (Request, bool) {
	if c.visual || n < 1 || n > c.TotalPages() {
		return Request{}, false
	}
	c.query.Page = n
	return c.Reload(), true
}

// NextPage steps forward one page.
func (c *Controller) NextPage() (Request, bool) { return c.GoToPage(c.query.Page + 1) }

// PrevPage steps back one page.
func (c *Controller) PrevPage() (Request, bool) { return c.GoToPage(c.query.Page - 1) }

// Reload issues a request for the current query. Any response to an earlier
// request will be discarded.
func (c *Controller) Reload() Request {
	c.seq++
	c.status = StatusLoading
	return Request{Seq: c.seq, Query: c.query.clone()}
}

// Resolve applies resp if it answers the latest request. A failed visual
// search leaves visual mode and returns the reload that restores the list.
func (c *Controller) Resolve(resp Response) (applied bool, followUp *Request) {
	if resp.Seq != c.seq {
		return false, nil
	}
	items := resp.Items
	if items == nil {
		items = []dahell.Opportunity{}
	}

	if c.visual {
		if resp.Err != nil {
			c.err = resp.Err
			c.restoreFromVisual()
			req := c.Reload()
			return true, &req
		}
		c.err = nil
		c.status = StatusLoaded
		c.page = Page{
			Items:       items,
			CurrentPage: 1,
			Total:       paging.Total{Count: len(items)},
			Visual:      true,
		}
		c.stats = nil
		return true, nil
	}

	if resp.Err != nil {
		c.page = Page{
			Items:       items,
			CurrentPage: c.query.Page,
			Total:       c.failedTotal(),
		}
		c.stats = nil
		c.err = resp.Err
		c.status = StatusFailed
		return true, nil
	}
	c.page = Page{
		Items:       items,
		CurrentPage: c.query.Page,
		Total:       paging.Estimate(c.query.Page, c.query.PageSize, len(items)),
	}
	c.stats = competitorStats(items)
	c.err = nil
	c.status = StatusLoaded
	return true, nil
}

// failedTotal keeps the last known total after a failed load. A failure says
// nothing about the size of the result set, so the failed page stays
// reachable for a retry.
func (c *Controller) failedTotal() paging.Total {
	total := c.page.Total
	if c.page.Visual {
		total = paging.Total{}
	}
	if reach := c.query.Page * c.query.PageSize; total.Count < reach {
		total = paging.Total{Count: reach, AtLeast: true}
	}
	return total
}

// EnterVisual switches to image search. The current query is saved and the
// displayed page cleared until the search resolves.
func (c *Controller) EnterVisual(path string) VisualRequest {
	if !c.visual {
		c.saved = c.query.clone()
	}
	c.visual = true
	c.visualPath = path
	c.page = Page{CurrentPage: 1, Visual: true}
	c.stats = nil
	c.seq++
	c.status = StatusLoading
	return VisualRequest{Seq: c.seq, Path: path}
}

// LeaveVisual restores the saved query and reloads it.
func (c *Controller) LeaveVisual() (Request, bool) {
	if !c.visual {
		return Request{}, false
	}
	c.restoreFromVisual()
	return c.Reload(), true
}

func (c *Controller) restoreFromVisual() {
	c.visual = false
	c.visualPath = ""
	c.query = c.saved.clone()
	c.page = Page{CurrentPage: c.query.Page}
}

// Stats returns the competitor distribution of the displayed page only.
func (c *Controller) Stats() []StatBucket {
	return append([]StatBucket(nil), c.stats...)
}

// Showing returns the 1-based bounds of the displayed items.
func (c *Controller) Showing() (from, to int) {
	if c.visual {
		if n := len(c.page.Items); n > 0 {
			return 1, n
		}
		return 0, 0
	}
	if len(c.page.Items) == 0 {
		return 0, 0
	}
	return paging.ShowingRange(c.page.CurrentPage, c.query.PageSize, c.page.Total)
}

// Window returns the pagination bar, or nil when there is one page or less.
func (c *Controller) Window() []paging.Token {
	total := c.TotalPages()
	if c.visual || total <= 1 {
		return nil
	}
	return paging.Windowed(paging.Clamp(c.page.CurrentPage, total), total, paging.DefaultMaxVisible)
}

func competitorStats(items []dahell.Opportunity) []StatBucket {
	if len(items) == 0 {
		return nil
	}
	counts := map[int]int{}
	for _, item := range items {
		counts[item.Competitors]++
	}
	out := make([]StatBucket, 0, len(counts))
	for comp, n := range counts {
		out = append(out, StatBucket{Competitors: comp, Count: n, Level: dahell.CompetitorLevel(comp)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Competitors < out[j].Competitors })
	return out
}
