package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/liftsync/internal/planner"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(root *RootOptions) *cobra.Command {
	var (
		limit int
		logs  bool
	)

	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List recent sync runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, root, func(svc PlanService) error {
				if logs {
					return runLoggedHistory(cmd.Context(), svc, limit, cmd.OutOrStdout())
				}
				return runHistory(cmd.Context(), svc, limit, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().BoolVar(&logs, "logs", false, "list logged exercises instead of sync runs")

	return cmd
}

func runHistory(ctx context.Context, svc PlanService, limit int, w io.Writer) error {
	runs, err := svc.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("No sync runs recorded."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tKIND\tSTATUS\tSOURCE\tTITLE\tDAYS\tUPDATES")
	for _, r := range runs {
		status := okColor.Sprint(r.Status)
		if r.Status != planner.StatusOK {
			status = warnColor.Sprint(r.Status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Kind, status, r.Source, r.Title, r.Days, r.Updates)
		if r.Error != "" {
			fmt.Fprintf(tw, "\t\t\t\t%s\t\t\n", warnColor.Sprint(r.Error))
		}
	}
	return tw.Flush()
}

func runLoggedHistory(ctx context.Context, svc PlanService, limit int, w io.Writer) error {
	entries, err := svc.LoggedExercises(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("No logged exercises recorded."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tDATE\tEXERCISE\tLOG\tCELL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.DateLabel, e.Exercise, e.LogText, e.CellRange)
	}
	return tw.Flush()
}
