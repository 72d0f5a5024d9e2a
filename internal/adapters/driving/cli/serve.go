package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivrit-ai/explore/internal/adapters/driving/mcp"
	"github.com/ivrit-ai/explore/internal/core/services"
	"github.com/ivrit-ai/explore/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search over the Model Context Protocol",
	Long: `Loads the persisted index (or builds it when missing or stale) and serves
the search, segment, segments, snippet and index_status tools.

By default the server speaks MCP over stdio. Use --http to listen on
serve.addr, or --port to listen on localhost at a given port.

With --watch, changes under the transcripts directory trigger background
rebuilds; searches keep using the previous index until the new one is ready.

Examples:
  # Stdio mode, for desktop assistants
  explore serve

  # HTTP mode with live reindexing
  explore serve --port 8765 --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addIndexFlags(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port on localhost (0 = use stdio)")
	serveCmd.Flags().Bool("http", false, "listen on serve.addr instead of stdio")
	serveCmd.Flags().Bool("watch", false, "rebuild the index when transcripts change")
	serveCmd.Flags().Bool("force-reindex", false, "ignore the persisted index and rebuild")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	useHTTP, _ := cmd.Flags().GetBool("http")
	watch, _ := cmd.Flags().GetBool("watch")
	force, _ := cmd.Flags().GetBool("force-reindex")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Section("Startup")
	if watch {
		a.index.SetAutoSave(a.settings.IndexPath)
	}
	if err := a.index.Warm(ctx, a.settings.IndexPath, force); err != nil {
		return fmt.Errorf("preparing index: %w", err)
	}

	if watch {
		trigger := services.NewRebuildTrigger(a.source, a.index, a.settings.RebuildInterval)
		go func() {
			if err := trigger.Start(ctx); err != nil {
				logger.Error("Transcript watcher stopped: %v", err)
			}
		}()
		defer trigger.Stop()
	}

	server, err := mcp.NewServer(&mcp.Ports{Search: a.search, Index: a.index})
	if err != nil {
		return err
	}

	addr := serveAddr(port, useHTTP, a.settings.ServeAddr)
	if addr == "" {
		return server.Run(ctx)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}

// serveAddr returns the HTTP listen address, or "" for stdio.
func serveAddr(port int, useHTTP bool, configured string) string {
	switch {
	case port > 0:
		return fmt.Sprintf("127.0.0.1:%d", port)
	case useHTTP:
		return configured
	default:
		return ""
	}
}

