package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/claude/liftsync/internal/planner"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	Title string
	File  string
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(root *RootOptions) *cobra.Command {
	opts := &PublishOptions{}

	cmd := &cobra.Command{
		Use:   "publish --title TITLE --file PLAN.md",
		Short: "Publish a markdown plan to the local cache and the spreadsheet",
		Long: `Parse a markdown weekly plan, save it to the local plan directory and
write it to a sheet named TITLE. Use --file - to read from stdin.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readPlanFile(opts.File, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withPlanner(cmd, root, func(svc PlanService) error {
				return runPublish(cmd.Context(), svc, opts.Title, body, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "sheet title, e.g. \"Weekly Plan (3/9/2026)\"")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "markdown plan file, or - for stdin")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readPlanFile(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read plan: %w", err)
	}
	return string(data), nil
}

func runPublish(ctx context.Context, svc PlanService, title, body string, w io.Writer) error {
	res, err := svc.Publish(ctx, title, planner.Text(body))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, okColor.Sprintf("Published %q.", res.Title))
	fmt.Fprintf(w, "Saved to %s\n", res.Path)
	fmt.Fprintln(w, res.Validation)
	return nil
}
