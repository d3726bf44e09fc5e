package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	pbhpmcp "github.com/ppiankov/pbhp/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs the PBHP gate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: pbhp_classify, pbhp_preflight, pbhp_check_door, pbhp_validate, pbhp_assess.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv, err := pbhpmcp.New(pbhpmcp.Config{
		Engine: rt.engine,
		Policy: rt.cfg,
		Logger: slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "pbhp MCP server running on stdio")
	fmt.Fprintf(os.Stderr, "Store: %s\n", rt.cfg.Store.Driver)
	return srv.Run(ctx)
}
