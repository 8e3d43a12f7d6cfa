package paging

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func pages(values ...int) []Token {
	out := make([]Token, 0, len(values))
	for _, v := range values {
		out = append(out, Token{Page: v})
	}
	return out
}

func TestWindowed(t *testing.T) {
	const e = 0
	tests := []struct {
		name    string
		current int
		total   int
		want    []Token
	}{
		{name: "fits", current: 2, total: 3, want: pages(1, 2, 3)},
		{name: "exactly max", current: 7, total: 7, want: pages(1, 2, 3, 4, 5, 6, 7)},
		{name: "start", current: 1, total: 20, want: pages(1, 2, 3, 4, 5, e, 20)},
		{name: "start boundary", current: 4, total: 20, want: pages(1, 2, 3, 4, 5, e, 20)},
		{name: "end", current: 18, total: 20, want: pages(1, e, 16, 17, 18, 19, 20)},
		{name: "end boundary", current: 17, total: 20, want: pages(1, e, 16, 17, 18, 19, 20)},
		{name: "middle", current: 10, total: 20, want: pages(1, e, 9, 10, 11, e, 20)},
		{name: "first middle", current: 5, total: 20, want: pages(1, e, 4, 5, 6, e, 20)},
		{name: "eight pages", current: 5, total: 8, want: pages(1, e, 4, 5, 6, 7, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Windowed(tt.current, tt.total, DefaultMaxVisible)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Windowed(%d, %d) mismatch (-want +got):\n%s", tt.current, tt.total, diff)
			}
		})
	}
}

func TestWindowed_NeverExceedsMaxVisible(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for current := 1; current <= total; current++ {
			got := Windowed(current, total, DefaultMaxVisible)
			if len(got) > DefaultMaxVisible {
				t.Fatalf("Windowed(%d, %d) has %d tokens", current, total, len(got))
			}
			found := false
			for _, tok := range got {
				if tok.Page == current {
					found = true
				}
			}
			if !found {
				t.Fatalf("Windowed(%d, %d) = %v, missing current page", current, total, got)
			}
		}
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name                    string
		page, pageSize, fetched int
		want                    Total
	}{
		{name: "full first page", page: 1, pageSize: 20, fetched: 20, want: Total{Count: 220, AtLeast: true}},
		{name: "full third page", page: 3, pageSize: 20, fetched: 20, want: Total{Count: 260, AtLeast: true}},
		{name: "short page exact", page: 3, pageSize: 20, fetched: 7, want: Total{Count: 47}},
		{name: "empty", page: 1, pageSize: 20, fetched: 0, want: Total{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.page, tt.pageSize, tt.fetched)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Estimate mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if s := (Total{Count: 220, AtLeast: true}).String(); s != "220+" {
		t.Fatalf("String = %q, want 220+", s)
	}
}

func TestPageArithmetic(t *testing.T) {
	if got := TotalPages(220, 20); got != 11 {
		t.Fatalf("TotalPages = %d, want 11", got)
	}
	if got := TotalPages(47, 20); got != 3 {
		t.Fatalf("TotalPages = %d, want 3", got)
	}
	if got := TotalPages(0, 20); got != 0 {
		t.Fatalf("TotalPages = %d, want 0", got)
	}
	if got := Offset(3, 20); got != 40 {
		t.Fatalf("Offset = %d, want 40", got)
	}
	if got := Clamp(0, 5); got != 1 {
		t.Fatalf("Clamp low = %d", got)
	}
	if got := Clamp(9, 5); got != 5 {
		t.Fatalf("Clamp high = %d", got)
	}
	if got := Clamp(3, 0); got != 1 {
		t.Fatalf("Clamp empty = %d", got)
	}
}

func TestShowingRange(t *testing.T) {
	from, to := ShowingRange(3, 20, Total{Count: 47})
	if from != 41 || to != 47 {
		t.Fatalf("ShowingRange = %d-%d, want 41-47", from, to)
	}
	from, to = ShowingRange(1, 20, Total{Count: 220, AtLeast: true})
	if from != 1 || to != 20 {
		t.Fatalf("ShowingRange = %d-%d, want 1-20", from, to)
	}
	from, to = ShowingRange(1, 20, Total{})
	if from != 0 || to != 0 {
		t.Fatalf("ShowingRange empty = %d-%d", from, to)
	}
}

func TestRange(t *testing.T) {
	r := Range{Min: 5, Max: -1}.Normalize()
	if diff := cmp.Diff(Range{Min: 0, Max: 5}, r); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
	if !r.Contains(5) || r.Contains(6) {
		t.Fatalf("Contains wrong for %v", r)
	}
	if r.String() != "0-5" {
		t.Fatalf("String = %q", r.String())
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		raw     string
		want    Range
		wantErr bool
	}{
		{raw: "0-5", want: Range{Min: 0, Max: 5}},
		{raw: " 2 - 20 ", want: Range{Min: 2, Max: 20}},
		{raw: "5", wantErr: true},
		{raw: "5-2", wantErr: true},
		{raw: "a-3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRange(%q) expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", tt.raw, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseRange(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}
