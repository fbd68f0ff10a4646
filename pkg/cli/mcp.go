package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mchmarny/buycheck/pkg/assist"
	urfave "github.com/urfave/cli/v3"
)

var mcpCmd = &urfave.Command{
	Name:            "mcp",
	Usage:           "Serve the purchase tools to an AI assistant over MCP (stdio)",
	HideHelpCommand: true,
	Flags:           []urfave.Flag{redisAddrFlag},
	Action:          cmdMCP,
}

func cmdMCP(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	// the host process reads stderr as noise
	initLogging(false, "error")

	c, closer, err := openCache(ctx, redisAddr(cmd, cfg))
	if err != nil {
		return err
	}
	defer closer()

	s := assist.New(cfg.DB, version, invalidateStats(c))
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("serving MCP: %w", err)
	}
	slog.Debug("mcp server stopped")
	return nil
}
