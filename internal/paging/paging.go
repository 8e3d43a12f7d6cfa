// Package paging computes pagination windows and page arithmetic for list
// views backed by an API without a count endpoint.
package paging

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxVisible is the widest window Windowed renders before collapsing
// runs of pages into an ellipsis.
const DefaultMaxVisible = 7

// Token is one slot of a pagination bar. Page zero is an ellipsis.
type Token struct {
	Page int
}

// Ellipsis marks a collapsed run of pages.
var Ellipsis = Token{}

// IsEllipsis reports whether the token stands for skipped pages.
func (t Token) IsEllipsis() bool { return t.Page == 0 }

func (t Token) String() string {
	if t.IsEllipsis() {
		return "..."
	}
	return strconv.Itoa(t.Page)
}

// Windowed returns the pages to show for current out of total. The caller
// hides pagination when total <= 1 and must clamp current into range first.
func Windowed(current, total, maxVisible int) []Token {
	if maxVisible < 5 {
		maxVisible = 5
	}
	if total <= maxVisible {
		return span(1, total)
	}

	head := maxVisible - 2
	side := (maxVisible - 5) / 2
	if side < 1 {
		side = 1
	}

	switch {
	case current <= head-1:
		out := span(1, head)
		return append(out, Ellipsis, Token{Page: total})
	case current >= total-(head-2):
		out := []Token{{Page: 1}, Ellipsis}
		return append(out, span(total-head+1, total)...)
	default:
		out := []Token{{Page: 1}, Ellipsis}
		out = append(out, span(current-side, current+side)...)
		return append(out, Ellipsis, Token{Page: total})
	}
}

func span(from, to int) []Token {
	if to < from {
		return nil
	}
	out := make([]Token, 0, to-from+1)
	for p := from; p <= to; p++ {
		out = append(out, Token{Page: p})
	}
	return out
}

// Total is an item count that may be a lower bound.
type Total struct {
	Count   int
	AtLeast bool
}

func (t Total) String() string {
	if t.AtLeast {
		return strconv.Itoa(t.Count) + "+"
	}
	return strconv.Itoa(t.Count)
}

// Estimate derives the total after fetching page. A full page means more
// results likely exist, so the count is extrapolated ten pages ahead and
// flagged as a lower bound. A short page gives the exact count.
func Estimate(page, pageSize, fetched int) Total {
	if page < 1 {
		page = 1
	}
	if pageSize > 0 && fetched >= pageSize {
		return Total{Count: (page + 10) * pageSize, AtLeast: true}
	}
	return Total{Count: Offset(page, pageSize) + fetched}
}

// Offset is the index of the first item on page.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize <= 0 {
		return 0
	}
	return (page - 1) * pageSize
}

// TotalPages rounds count up to whole pages.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Clamp forces page into [1, totalPages]. An empty result set clamps to 1.
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	default:
		return page
	}
}

// ShowingRange returns the 1-based item bounds displayed on page, or 0, 0
// when there is nothing to show.
func ShowingRange(page, pageSize int, total Total) (from, to int) {
	if total.Count <= 0 || pageSize <= 0 {
		return 0, 0
	}
	from = Offset(page, pageSize) + 1
	to = page * pageSize
	if to > total.Count {
		to = total.Count
	}
	if from > to {
		return 0, 0
	}
	return from, to
}

// Range is an inclusive integer interval.
type Range struct {
	Min int
	Max int
}

// Normalize orders the bounds and floors them at zero.
func (r Range) Normalize() Range {
	if r.Min < 0 {
		r.Min = 0
	}
	if r.Max < 0 {
		r.Max = 0
	}
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return strconv.Itoa(r.Min) + "-" + strconv.Itoa(r.Max)
}

// ParseRange reads "min-max" as written by Range.String.
func ParseRange(raw string) (Range, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return Range{}, fmt.Errorf("range %q: want min-max", raw)
	}
	minV, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", raw, err)
	}
	maxV, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", raw, err)
	}
	if minV < 0 || maxV < minV {
		return Range{}, fmt.Errorf("range %q: bounds out of order", raw)
	}
	return Range{Min: minV, Max: maxV}, nil
}
