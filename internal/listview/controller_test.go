package listview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/paging"
)

func items(prefix string, n int, competitors ...int) []dahell.Opportunity {
	out := make([]dahell.Opportunity, n)
	for i := range out {
		out[i] = dahell.Opportunity{ID: int64(i + 1), Title: fmt.Sprintf("%s-%d", prefix, i+1)}
		if len(competitors) > 0 {
			out[i].Competitors = competitors[i%len(competitors)]
		}
	}
	return out
}

func loadedController(t *testing.T, n int) *Controller {
	t.Helper()
	c := New(Options{})
	req := c.Reload()
	applied, _ := c.Resolve(Response{Seq: req.Seq, Items: items("init", n)})
	require.True(t, applied)
	return c
}

func TestReload_LaterResponseWins(t *testing.T) {
	c := New(Options{})

	first := c.Reload()
	second := c.Reload()
	require.Greater(t, second.Seq, first.Seq)

	applied, _ := c.Resolve(Response{Seq: second.Seq, Items: items("second", 3)})
	require.True(t, applied)

	applied, _ = c.Resolve(Response{Seq: first.Seq, Items: items("first", 20)})
	assert.False(t, applied, "stale response must be discarded")

	page := c.Page()
	require.Len(t, page.Items, 3)
	assert.Equal(t, "second-1", page.Items[0].Title)
	assert.Equal(t, StatusLoaded, c.Status())
}

func TestReload_StaleResponseBeforeNewerIsDiscarded(t *testing.T) {
	c := New(Options{})
	first := c.Reload()
	second := c.Reload()

	applied, _ := c.Resolve(Response{Seq: first.Seq, Items: items("first", 20)})
	assert.False(t, applied)
	assert.Equal(t, StatusLoading, c.Status())

	applied, _ = c.Resolve(Response{Seq: second.Seq, Items: items("second", 2)})
	assert.True(t, applied)
	assert.Equal(t, "second-1", c.Page().Items[0].Title)
}

func TestSetFilter_BurstCollapsesToOneReload(t *testing.T) {
	c := New(Options{})

	var tickets []Debounce
	for _, text := range []string{"l", "la", "lam", "lamp", "lampa"} {
		ticket, ok := c.SetFilter(Search(text))
		require.True(t, ok)
		tickets = append(tickets, ticket)
	}

	reloads := 0
	var last Request
	for _, ticket := range tickets {
		assert.Equal(t, DefaultDebounce, ticket.After)
		if req, ok := c.DebounceElapsed(ticket.Gen); ok {
			reloads++
			last = req
		}
	}
	assert.Equal(t, 1, reloads)
	assert.Equal(t, "lampa", last.Query.Search)
	assert.Equal(t, 1, last.Query.Page)
}

func TestSetFilter_ResetsPage(t *testing.T) {
	c := loadedController(t, 20)
	req, ok := c.GoToPage(4)
	require.True(t, ok)
	c.Resolve(Response{Seq: req.Seq, Items: items("p4", 20)})
	require.Equal(t, 4, c.Query().Page)

	ticket, ok := c.SetFilter(Category("3"))
	require.True(t, ok)
	assert.Equal(t, 1, c.Query().Page)
	req, ok = c.DebounceElapsed(ticket.Gen)
	require.True(t, ok)
	assert.Equal(t, "3", req.Query.Category)
	assert.Equal(t, 0, req.Query.APIQuery().Offset)
}

func TestGoToPage_Bounds(t *testing.T) {
	c := New(Options{})
	_, ok := c.GoToPage(1)
	assert.False(t, ok, "no pages before the first load")

	c = loadedController(t, 20)
	require.Equal(t, 11, c.TotalPages())

	_, ok = c.GoToPage(0)
	assert.False(t, ok)
	_, ok = c.GoToPage(12)
	assert.False(t, ok)

	req, ok := c.GoToPage(11)
	require.True(t, ok)
	assert.Equal(t, 11, req.Query.Page)
	assert.Equal(t, 200, req.Query.APIQuery().Offset)
}

func TestResolve_EstimatesTotal(t *testing.T) {
	c := loadedController(t, 20)
	assert.Equal(t, paging.Total{Count: 220, AtLeast: true}, c.Page().Total)

	req, _ := c.GoToPage(3)
	c.Resolve(Response{Seq: req.Seq, Items: items("p3", 7)})
	assert.Equal(t, paging.Total{Count: 47}, c.Page().Total)
	assert.Equal(t, 3, c.TotalPages())

	from, to := c.Showing()
	assert.Equal(t, 41, from)
	assert.Equal(t, 47, to)
}

func TestResolve_FailureShowsEmptyPage(t *testing.T) {
	c := loadedController(t, 20)
	req := c.Reload()
	applied, followUp := c.Resolve(Response{Seq: req.Seq, Items: nil, Err: errors.New("down")})
	require.True(t, applied)
	assert.Nil(t, followUp)
	assert.Equal(t, StatusFailed, c.Status())
	assert.Empty(t, c.Page().Items)
	assert.NotNil(t, c.Page().Items)
	assert.EqualError(t, c.Err(), "down")
}

func TestResolve_FailureKeepsTotalSoPageCanBeRetried(t *testing.T) {
	c := loadedController(t, 20)
	for page := 2; page <= 4; page++ {
		req, ok := c.GoToPage(page)
		require.True(t, ok)
		c.Resolve(Response{Seq: req.Seq, Items: items("full", 20)})
	}
	require.Equal(t, paging.Total{Count: 280, AtLeast: true}, c.Page().Total)

	req, ok := c.GoToPage(5)
	require.True(t, ok)
	c.Resolve(Response{Seq: req.Seq, Err: errors.New("timeout")})

	assert.Equal(t, StatusFailed, c.Status())
	assert.Equal(t, paging.Total{Count: 280, AtLeast: true}, c.Page().Total)
	assert.Equal(t, 14, c.TotalPages())
	assert.Nil(t, c.Stats())
	from, to := c.Showing()
	assert.Zero(t, from)
	assert.Zero(t, to)

	retry, ok := c.GoToPage(5)
	require.True(t, ok)
	assert.Equal(t, 5, retry.Query.Page)
	_, ok = c.NextPage()
	assert.True(t, ok)
}

func TestResolve_FirstLoadFailureKeepsCurrentPageReachable(t *testing.T) {
	c := New(Options{})
	req := c.Reload()
	c.Resolve(Response{Seq: req.Seq, Err: errors.New("down")})

	assert.Equal(t, paging.Total{Count: 20, AtLeast: true}, c.Page().Total)
	_, ok := c.GoToPage(1)
	assert.True(t, ok)
}

func TestStats_OnlyLoadedPage(t *testing.T) {
	c := New(Options{})
	req := c.Reload()
	c.Resolve(Response{Seq: req.Seq, Items: items("x", 6, 0, 3, 6, 0, 3, 0)})

	assert.Equal(t, []StatBucket{
		{Competitors: 0, Count: 3, Level: dahell.LevelLow},
		{Competitors: 3, Count: 2, Level: dahell.LevelMedium},
		{Competitors: 6, Count: 1, Level: dahell.LevelHigh},
	}, c.Stats())

	req = c.Reload()
	c.Resolve(Response{Seq: req.Seq, Items: items("y", 2, 5)})
	assert.Equal(t, []StatBucket{{Competitors: 5, Count: 2, Level: dahell.LevelMedium}}, c.Stats())
}

func TestVisualMode_DisablesFiltersAndRestoresQuery(t *testing.T) {
	c := New(Options{})
	ticket, _ := c.SetFilter(Search("lamp"), Competitors(paging.Range{Min: 0, Max: 3}))
	req, _ := c.DebounceElapsed(ticket.Gen)
	c.Resolve(Response{Seq: req.Seq, Items: items("lamp", 20)})

	vreq := c.EnterVisual("/tmp/shoe.png")
	assert.False(t, c.FiltersEnabled())
	assert.True(t, c.Visual())
	assert.Empty(t, c.Page().Items)
	assert.Equal(t, StatusLoading, c.Status())

	_, ok := c.SetFilter(Search("other"))
	assert.False(t, ok)
	_, ok = c.GoToPage(2)
	assert.False(t, ok)

	applied, _ := c.Resolve(Response{Seq: vreq.Seq, Items: items("similar", 8)})
	require.True(t, applied)
	assert.Len(t, c.Page().Items, 8)
	assert.True(t, c.Page().Visual)
	assert.Nil(t, c.Window())
	assert.Empty(t, c.Stats())

	back, ok := c.LeaveVisual()
	require.True(t, ok)
	assert.True(t, c.FiltersEnabled())
	assert.Equal(t, "lamp", back.Query.Search)
	assert.Equal(t, paging.Range{Min: 0, Max: 3}, back.Query.Competitors)
}

func TestVisualMode_FailureLeavesAndReloads(t *testing.T) {
	c := New(Options{})
	vreq := c.EnterVisual("/tmp/broken.png")

	applied, followUp := c.Resolve(Response{Seq: vreq.Seq, Err: errors.New("upload failed")})
	require.True(t, applied)
	require.NotNil(t, followUp)
	assert.False(t, c.Visual())
	assert.Equal(t, 1, followUp.Query.Page)
	assert.Equal(t, StatusLoading, c.Status())
}

func TestWindow(t *testing.T) {
	c := New(Options{})
	req := c.Reload()
	c.Resolve(Response{Seq: req.Seq, Items: items("x", 5)})
	assert.Nil(t, c.Window(), "single page hides pagination")

	c = loadedController(t, 20)
	assert.Len(t, c.Window(), 7)
}

func TestQuery_APIQueryDropsNonPositivePrices(t *testing.T) {
	zero := 0.0
	neg := -3.0
	ceiling := 50.0
	c := New(Options{})
	c.SetFilter(MinPrice(&zero), MaxPrice(&ceiling))
	q := c.Query().APIQuery()
	assert.Zero(t, q.MinPrice)
	assert.Equal(t, 50.0, q.MaxPrice)

	c.SetFilter(MaxPrice(&neg))
	assert.Nil(t, c.Query().MaxPrice)
}

func TestNextPreset_Cycles(t *testing.T) {
	p := NextPreset(DefaultPreset.Range)
	assert.Equal(t, Presets[0], p)
	assert.Equal(t, Presets[1], NextPreset(p.Range))
	assert.Equal(t, Presets[0], NextPreset(paging.Range{Min: 2, Max: 9}))
}
