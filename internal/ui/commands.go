package ui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssebasarias/Dahell/internal/actions"
	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/gateway"
	"github.com/ssebasarias/Dahell/internal/listview"
	"github.com/ssebasarias/Dahell/internal/logtail"
	"github.com/ssebasarias/Dahell/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type noticeMsg struct {
	text  string
	level dahell.Level
}

type categoriesMsg gateway.Result[[]dahell.Category]

// debounceMsg fires once a filter edit has been quiet for the debounce window.
type debounceMsg struct{ gen uint64 }

// pageMsg answers a list or image query. Stale sequence numbers are dropped
// by the list controller.
type pageMsg listview.Response

type clipboardMsg struct {
	url string
	err error
}

type investigationMsg struct {
	productID int64
	result    gateway.Result[dahell.Investigation]
}

type actionDoneMsg struct {
	targetID int64
	err      error
}

type closeInvestigatorMsg struct{ productID int64 }

type feedbackDoneMsg struct {
	gen uint64
	err error
}

type closeFeedbackMsg struct{ gen uint64 }

type controlDoneMsg struct {
	service string
	action  string
	result  gateway.Result[dahell.ControlResponse]
}

type diagnosticsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// refreshCmd runs the pollers of screen once and then reports the snapshot.
func refreshCmd(refresh func(state.Screen), store *state.Store, screen state.Screen) tea.Cmd {
	return func() tea.Msg {
		if refresh != nil {
			refresh(screen)
		}
		return snapshotMsg(store.Snapshot())
	}
}

func categoriesCmd(ctx context.Context, gw *gateway.Gateway) tea.Cmd {
	if gw == nil {
		return nil
	}
	return func() tea.Msg {
		return categoriesMsg(gw.Categories(ctx))
	}
}

func debounceCmd(d listview.Debounce) tea.Cmd {
	return tea.Tick(d.After, func(time.Time) tea.Msg {
		return debounceMsg{gen: d.Gen}
	})
}

func fetchPageCmd(ctx context.Context, gw *gateway.Gateway, req listview.Request) tea.Cmd {
	if gw == nil {
		return nil
	}
	return func() tea.Msg {
		res := gw.GoldMine(ctx, req.Query.APIQuery())
		return pageMsg{Seq: req.Seq, Items: res.Value, Err: res.Err}
	}
}

func visualSearchCmd(ctx context.Context, gw *gateway.Gateway, req listview.VisualRequest) tea.Cmd {
	if gw == nil {
		return nil
	}
	return func() tea.Msg {
		res := gw.VisualSearch(ctx, req.Path)
		return pageMsg{Seq: req.Seq, Items: res.Value, Err: res.Err}
	}
}

func copyURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{url: url, err: clipboard.WriteAll(url)}
	}
}

func investigateCmd(ctx context.Context, gw *gateway.Gateway, productID int64) tea.Cmd {
	if gw == nil {
		return nil
	}
	return func() tea.Msg {
		return investigationMsg{productID: productID, result: gw.Investigate(ctx, productID)}
	}
}

func orphanActionCmd(ctx context.Context, gw *gateway.Gateway, p actions.Pending) tea.Cmd {
	return func() tea.Msg {
		var err error
		if gw == nil {
			err = dahell.ErrNilClient
		} else {
			err = gw.ExecuteOrphanAction(ctx, p.Request())
		}
		return actionDoneMsg{targetID: p.TargetID, err: err}
	}
}

func closeInvestigatorCmd(after time.Duration, productID int64) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return closeInvestigatorMsg{productID: productID}
	})
}

func saveFeedbackCmd(ctx context.Context, gw *gateway.Gateway, gen uint64, req dahell.FeedbackRequest) tea.Cmd {
	return func() tea.Msg {
		var err error
		if gw == nil {
			err = dahell.ErrNilClient
		} else {
			err = gw.SaveFeedback(ctx, req)
		}
		return feedbackDoneMsg{gen: gen, err: err}
	}
}

func closeFeedbackCmd(after time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return closeFeedbackMsg{gen: gen}
	})
}

func controlCmd(ctx context.Context, gw *gateway.Gateway, service, action string) tea.Cmd {
	if gw == nil {
		return nil
	}
	return func() tea.Msg {
		return controlDoneMsg{service: service, action: action, result: gw.ControlContainer(ctx, service, action)}
	}
}

func tailCmd(path string, warnsOnly bool) tea.Cmd {
	minLevel := "debug"
	if warnsOnly {
		minLevel = "warn"
	}
	return func() tea.Msg {
		entries, err := logtail.Tail(path, DiagnosticsLines, minLevel)
		return diagnosticsMsg{entries: entries, err: err}
	}
}
