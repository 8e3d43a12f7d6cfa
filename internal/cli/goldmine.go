package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/ssebasarias/Dahell/internal/app"
	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/gateway"
	"github.com/ssebasarias/Dahell/internal/listview"
	"github.com/ssebasarias/Dahell/internal/paging"
)

type goldMineFlags struct {
	search      string
	category    string
	competitors string
	minPrice    float64
	maxPrice    float64
	page        int
	image       string
}

func newGoldMineCmd(opts *rootOptions) *cobra.Command {
	var f goldMineFlags
	cmd := &cobra.Command{
		Use:   "goldmine",
		Short: "Run one Gold Mine query and print the page",
		Long: `Runs a single Gold Mine list query, or an image search with --image, and
prints the page, the competitor distribution of that page and the
pagination bar.

Example:
  dahell goldmine --search lampara --competitors 0-3 --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := paging.ParseRange(f.competitors)
			if err != nil {
				return err
			}
			env, err := app.Setup(opts.appOptions(true))
			if err != nil {
				return err
			}
			defer env.Close()

			ctrl := listview.New(listview.Options{PageSize: env.Config.PageSize, Competitors: r})
			filters := []listview.Filter{listview.Search(f.search), listview.Category(f.category)}
			if cmd.Flags().Changed("min-price") {
				v := f.minPrice
				filters = append(filters, listview.MinPrice(&v))
			}
			if cmd.Flags().Changed("max-price") {
				v := f.maxPrice
				filters = append(filters, listview.MaxPrice(&v))
			}
			if err := runGoldMine(cmd.Context(), env.Gateway, ctrl, filters, f.page, f.image); err != nil {
				return err
			}
			printGoldMine(cmd.OutOrStdout(), ctrl)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.search, "search", "", "title search")
	flags.StringVar(&f.category, "category", "", "category id")
	flags.StringVar(&f.competitors, "competitors", listview.DefaultPreset.Range.String(), "competitor range min-max")
	flags.Float64Var(&f.minPrice, "min-price", 0, "minimum price")
	flags.Float64Var(&f.maxPrice, "max-price", 0, "maximum price")
	flags.IntVar(&f.page, "page", 1, "page to print")
	flags.StringVar(&f.image, "image", "", "run an image search with this file instead of a list query")
	return cmd
}

// runGoldMine drives ctrl the way the console does: filters go through the
// debounce ticket, pages are reached through the estimated page count.
func runGoldMine(ctx context.Context, gw *gateway.Gateway, ctrl *listview.Controller, filters []listview.Filter, page int, image string) error {
	if image != "" {
		req := ctrl.EnterVisual(image)
		res := gw.VisualSearch(ctx, req.Path)
		ctrl.Resolve(listview.Response{Seq: req.Seq, Items: res.Value, Err: res.Err})
		if res.Err != nil {
			return fmt.Errorf("visual search: %w", res.Err)
		}
		return nil
	}

	ticket, _ := ctrl.SetFilter(filters...)
	req, ok := ctrl.DebounceElapsed(ticket.Gen)
	if !ok {
		req = ctrl.Reload()
	}
	if err := loadPage(ctx, gw, ctrl, req); err != nil {
		return err
	}
	for ctrl.Page().CurrentPage < page {
		next, ok := ctrl.GoToPage(min(page, ctrl.TotalPages()))
		if !ok {
			break
		}
		if err := loadPage(ctx, gw, ctrl, next); err != nil {
			return err
		}
	}
	return nil
}

func loadPage(ctx context.Context, gw *gateway.Gateway, ctrl *listview.Controller, req listview.Request) error {
	res := gw.GoldMine(ctx, req.Query.APIQuery())
	ctrl.Resolve(listview.Response{Seq: req.Seq, Items: res.Value, Err: res.Err})
	if res.Err != nil {
		return fmt.Errorf("load page %d: %w", req.Query.Page, res.Err)
	}
	return nil
}

func printGoldMine(out io.Writer, ctrl *listview.Controller) {
	page := ctrl.Page()
	if len(page.Items) == 0 {
		fmt.Fprintln(out, "No products match the current filters.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	last := "MARGIN"
	if page.Visual {
		last = "SIMILARITY"
	}
	fmt.Fprintf(tw, "ID\tTITLE\tPRICE\tCOMPETITORS\tSATURATION\t%s\n", last)
	for _, item := range page.Items {
		extra := item.ProfitMargin.String()
		if page.Visual {
			extra = item.Similarity.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%d (%s)\t%s\t%s\n",
			item.ID,
			clip(item.Title, 48),
			humanize.Comma(int64(item.Price.Float64())),
			item.Competitors,
			dahell.CompetitorLevel(item.Competitors),
			item.Saturation,
			extra,
		)
	}
	_ = tw.Flush()

	from, to := ctrl.Showing()
	if page.Visual {
		fmt.Fprintf(out, "\nShowing %d - %d visual matches for %s\n", from, to, ctrl.VisualPath())
		return
	}
	fmt.Fprintf(out, "\nShowing %d - %d of %s\n", from, to, page.Total)

	if window := ctrl.Window(); len(window) > 0 {
		parts := make([]string, 0, len(window))
		for _, tok := range window {
			if tok.Page == page.CurrentPage {
				parts = append(parts, "["+tok.String()+"]")
				continue
			}
			parts = append(parts, tok.String())
		}
		fmt.Fprintf(out, "Pages: %s\n", strings.Join(parts, " "))
	}

	fmt.Fprintln(out, "Competitors on this page:")
	for _, b := range ctrl.Stats() {
		fmt.Fprintf(out, "  %2d  %s  %s\n", b.Competitors, strings.Repeat("#", b.Count), english.Plural(b.Count, "product", "products"))
	}
}

func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
