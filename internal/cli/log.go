package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claude/liftsync/internal/models"
)

var errBadLogArg = errors.New(`log entries must look like "Exercise=result"`)

// NewLogCommand creates the log command.
func NewLogCommand(root *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "log --date LABEL EXERCISE=RESULT...",
		Short: "Write logged results to the current plan sheet",
		Long: `Write results into the Log column of the current weekly plan sheet.
Arguments must follow the order of the exercises under that date. Each argument names an exercise and its result, for example:

  planctl log --date 3/3/2026 "Back Squat=5x5 @ 100kg" "Incline Press=3x8"`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := parseLogArgs(args)
			if err != nil {
				return err
			}
			return withPlanner(cmd, root, func(svc PlanService) error {
				return runLog(cmd.Context(), svc, date, entries, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "date text as it appears in column A of the sheet, e.g. 3/3/2026")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

// parseLogArgs splits each "name=result" argument on its first '='.
func parseLogArgs(args []string) ([]models.LogEntry, error) {
	entries := make([]models.LogEntry, 0, len(args))
	for _, arg := range args {
		name, text, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errBadLogArg, arg)
		}
		entries = append(entries, models.LogEntry{Exercise: name, Text: strings.TrimSpace(text)})
	}
	return entries, nil
}

func runLog(ctx context.Context, svc PlanService, date string, entries []models.LogEntry, w io.Writer) error {
	res, err := svc.SaveLogs(ctx, date, entries)
	if err != nil {
		return err
	}
	if len(res.Updates) == 0 {
		fmt.Fprintln(w, warnColor.Sprintf("No matching exercises under %q in %s.", date, res.Sheet))
		return nil
	}
	for _, u := range res.Updates {
		var text string
		if len(u.Values) > 0 && len(u.Values[0]) > 0 {
			text = u.Values[0][0]
		}
		fmt.Fprintf(w, "%s %s\n", okColor.Sprint(u.Range), text)
	}
	fmt.Fprintln(w, okColor.Sprintf("Updated %d cells in %s.", len(res.Updates), res.Sheet))
	return nil
}
