package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/claude/liftsync/internal/ingest/markdown"
	"github.com/claude/liftsync/internal/models"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	Force        bool
	Raw          bool
	Supplemental bool
}

// NewShowCommand creates the show command.
func NewShowCommand(root *RootOptions) *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:          "show",
		Short:        "Show the current weekly plan",
		Long:         "Load the current weekly plan, preferring the local plan cache unless --force is set, and print it.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlanner(cmd, root, func(svc PlanService) error {
				return runShow(cmd.Context(), svc, opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "always read the spreadsheet")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print plain markdown")
	cmd.Flags().BoolVarP(&opts.Supplemental, "supplemental", "s", false, "show the supplemental days instead")

	return cmd
}

func runShow(ctx context.Context, svc PlanService, opts *ShowOptions, w io.Writer) error {
	if opts.Supplemental {
		bucket, err := svc.LoadSupplemental(ctx)
		if err != nil {
			return err
		}
		return renderMarkdown(w, markdown.Render("Supplemental", supplementalDays(bucket)), opts.Raw)
	}

	snap, err := svc.Load(ctx, opts.Force)
	if err != nil {
		return err
	}
	if err := renderMarkdown(w, markdown.Render(snap.Title, snap.Days), opts.Raw); err != nil {
		return err
	}
	if !opts.Raw {
		fmt.Fprintln(w, dimColor.Sprintf("%s (%s)", snap.Summary, snap.Source))
	}
	return nil
}

// supplementalDays orders the bucket by weekday for rendering.
func supplementalDays(bucket models.SupplementalBucket) []models.DayWorkout {
	order := map[string]int{"Tuesday": 0, "Thursday": 1, "Saturday": 2}
	names := make([]string, 0, len(bucket))
	for name := range bucket {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := order[names[i]]
		oj, jok := order[names[j]]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	days := make([]models.DayWorkout, 0, len(names))
	for _, name := range names {
		days = append(days, models.DayWorkout{DayLabel: name, DayName: name, Exercises: bucket[name]})
	}
	return days
}
