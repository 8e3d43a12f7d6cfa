package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ssebasarias/Dahell/internal/actions"
	"github.com/ssebasarias/Dahell/internal/app"
	"github.com/ssebasarias/Dahell/internal/dahell"
)

func newOrphansCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "Inspect and resolve Cluster Lab orphans",
	}
	cmd.AddCommand(newOrphansListCmd(opts), newOrphansActCmd(opts))
	return cmd
}

func newOrphansListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the unresolved orphans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.Setup(opts.appOptions(true))
			if err != nil {
				return err
			}
			defer env.Close()

			res := env.Gateway.Orphans(cmd.Context())
			if res.Err != nil {
				return fmt.Errorf("fetch orphans: %w", res.Err)
			}
			printOrphans(cmd.OutOrStdout(), res.Value)
			return nil
		},
	}
}

func newOrphansActCmd(opts *rootOptions) *cobra.Command {
	var (
		action     string
		productID  int64
		candidates []int64
	)
	cmd := &cobra.Command{
		Use:   "act",
		Short: "Apply TRASH, CONFIRM_SINGLETON or MERGE_SELECTED to an orphan",
		Long: `Resolves one orphan the way the investigator does: the action is validated
locally first, then sent to the backend, and on success the orphan is
dropped from the unresolved list.

Example:
  dahell orphans act --action MERGE_SELECTED --product 42 --candidates 7,9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := actions.ParseKind(action)
			if err != nil {
				return err
			}
			env, err := app.Setup(opts.appOptions(true))
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			ctrl := actions.New(actions.Options{
				CloseDelay: env.Config.ActionCloseDelay,
				Logger:     env.Logger,
			})
			if res := env.Gateway.Orphans(ctx); res.OK() {
				ctrl.Sync(res.Value)
			}
			before := len(ctrl.Unresolved())

			out, err := ctrl.Execute(ctx, env.Gateway, kind, productID, candidates)
			if err != nil {
				return fmt.Errorf("%s on %d: %w", kind, productID, err)
			}
			left := ctrl.Unresolved()
			fmt.Fprintf(cmd.OutOrStdout(), "%s applied to product %d; %s unresolved (was %d)\n",
				out.Kind, out.TargetID, humanize.Comma(int64(len(left))), before)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&action, "action", "", "TRASH, CONFIRM_SINGLETON or MERGE_SELECTED")
	flags.Int64Var(&productID, "product", 0, "orphan product id")
	flags.Int64SliceVar(&candidates, "candidates", nil, "candidate ids for MERGE_SELECTED")
	_ = cmd.MarkFlagRequired("action")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func printOrphans(out io.Writer, orphans []dahell.Orphan) {
	if len(orphans) == 0 {
		fmt.Fprintln(out, "No orphans pending.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tTITLE\tPRICE\tCLUSTER")
	for _, o := range orphans {
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%d\n", o.ProductID, clip(o.Title, 48), humanize.Comma(int64(o.Price.Float64())), o.ClusterID)
	}
	_ = tw.Flush()
}
