package cli

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	liftmcp "github.com/claude/liftsync/internal/mcp"
)

// Version is reported to MCP clients. Set at build time via -ldflags.
var Version = "dev"

// MCPOptions holds flags for the mcp command.
type MCPOptions struct {
	ServerURL string
	APIKey    string
}

// NewMCPCommand creates the mcp command, which serves MCP over stdio.
func NewMCPCommand(root *RootOptions) *cobra.Command {
	opts := &MCPOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the plan tools over MCP stdio",
		Long: `Serve the plan tools to an MCP client over stdin/stdout.
With --server the tools call a running liftsync server (for example over
Tailscale); otherwise they use the local config directly.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd.ErrOrStderr(), root.Verbose)

			if opts.ServerURL != "" {
				key := opts.APIKey
				if key == "" {
					key = os.Getenv("LIFTSYNC_AUTH_API_KEY")
				}
				svc := liftmcp.NewHTTPClient(opts.ServerURL, key)
				return serveStdio(liftmcp.New(svc, Version, log))
			}

			e, err := openEnv(root, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			defer e.Close()
			return serveStdio(liftmcp.New(e.planner, Version, e.log))
		},
	}

	cmd.Flags().StringVar(&opts.ServerURL, "server", "", "base URL of a liftsync server, e.g. http://liftsync")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "API key for write tools (default $LIFTSYNC_AUTH_API_KEY)")

	return cmd
}

func serveStdio(s *server.MCPServer) error {
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
