package listview

import (
	"strings"

	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/paging"
)

// DefaultPageSize matches the backend's default limit.
const DefaultPageSize = 20

// Query is the list-query state owned by a Controller.
type Query struct {
	Search      string
	Category    string
	Competitors paging.Range
	MinPrice    *float64
	MaxPrice    *float64
	Page        int
	PageSize    int
}

// normalized enforces page >= 1, ordered competitor bounds and positive
// price bounds. Zero or negative prices mean no bound.
func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Competitors = q.Competitors.Normalize()
	q.MinPrice = positive(q.MinPrice)
	q.MaxPrice = positive(q.MaxPrice)
	return q
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	out := *v
	return &out
}

// APIQuery converts q into client parameters.
func (q Query) APIQuery() dahell.GoldMineQuery {
	q = q.normalized()
	out := dahell.GoldMineQuery{
		Search:         q.Search,
		Category:       q.Category,
		MinCompetitors: q.Competitors.Min,
		MaxCompetitors: q.Competitors.Max,
		Limit:          q.PageSize,
		Offset:         paging.Offset(q.Page, q.PageSize),
	}
	if q.MinPrice != nil {
		out.MinPrice = *q.MinPrice
	}
	if q.MaxPrice != nil {
		out.MaxPrice = *q.MaxPrice
	}
	return out
}

func (q Query) clone() Query {
	q.MinPrice = positive(q.MinPrice)
	q.MaxPrice = positive(q.MaxPrice)
	return q
}

// Filter mutates a query. Filters never touch the page number; SetFilter
// resets it.
type Filter func(*Query)

// Search sets the free-text search.
func Search(text string) Filter {
	return func(q *Query) { q.Search = text }
}

// Category sets the category id. Empty means all categories.
func Category(id string) Filter {
	return func(q *Query) { q.Category = id }
}

// Competitors sets the competitor-count range.
func Competitors(r paging.Range) Filter {
	return func(q *Query) { q.Competitors = r }
}

// MinPrice sets the lower price bound. Nil or non-positive clears it.
func MinPrice(v *float64) Filter {
	return func(q *Query) { q.MinPrice = positive(v) }
}

// MaxPrice sets the upper price bound. Nil or non-positive clears it.
func MaxPrice(v *float64) Filter {
	return func(q *Query) { q.MaxPrice = positive(v) }
}

// Preset is a named competitor range.
type Preset struct {
	Label string
	Range paging.Range
}

// Presets are the competitor ranges offered by the filter bar.
var Presets = []Preset{
	{Label: "Solo yo (0-1)", Range: paging.Range{Min: 0, Max: 1}},
	{Label: "Baja (0-3)", Range: paging.Range{Min: 0, Max: 3}},
	{Label: "Media (0-5)", Range: paging.Range{Min: 0, Max: 5}},
	{Label: "Todas (0-20)", Range: paging.Range{Min: 0, Max: 20}},
}

// DefaultPreset is the widest range.
var DefaultPreset = Presets[len(Presets)-1]

// NextPreset returns the preset after the one matching r, wrapping around.
// An unknown range starts from the first preset.
func NextPreset(r paging.Range) Preset {
	for i, p := range Presets {
		if p.Range == r {
			return Presets[(i+1)%len(Presets)]
		}
	}
	return Presets[0]
}

// PresetFor returns the preset matching r, if any.
func PresetFor(r paging.Range) (Preset, bool) {
	for _, p := range Presets {
		if p.Range == r {
			return p, true
		}
	}
	return Preset{}, false
}
