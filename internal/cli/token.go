package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/liftsync/internal/config"
	"github.com/claude/liftsync/internal/token"
	"github.com/claude/liftsync/internal/transport"
)

// NewTokenCommand creates the token command.
func NewTokenCommand(root *RootOptions) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:          "token",
		Short:        "Refresh the cached access token if needed and report its expiry",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.ConfigPath)
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			m := token.NewManager(transport.NewHTTPClient(httpTimeout), newLogger(cmd.ErrOrStderr(), root.Verbose))
			return runToken(cmd.Context(), m, cfg.Token.Path, time.Duration(cfg.Token.RefreshSkew), time.Now(), show, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the access token itself")

	return cmd
}

func runToken(ctx context.Context, m *token.Manager, path string, skew time.Duration, now time.Time, show bool, w io.Writer) error {
	tok, err := m.ResolveAccessToken(ctx, path, now, skew)
	if err != nil {
		return err
	}

	if show {
		fmt.Fprintln(w, tok)
		return nil
	}

	fmt.Fprintln(w, okColor.Sprintf("Access token available (%s).", maskToken(tok)))

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rec, err := token.ParseRecord(data)
	if err != nil {
		return fmt.Errorf("%w: %v", token.ErrInvalidTokenFile, err)
	}
	if exp, ok := rec.Expiry(); ok {
		fmt.Fprintf(w, "Expires %s (in %s).\n", exp.Format(time.RFC3339), exp.Sub(now).Round(time.Second))
	} else {
		fmt.Fprintln(w, warnColor.Sprint("No parseable expiry; the token is treated as non-expiring."))
	}
	return nil
}

// maskToken keeps only the first few characters.
func maskToken(tok string) string {
	if len(tok) <= 6 {
		return "***"
	}
	return tok[:6] + "***"
}
