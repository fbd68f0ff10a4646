package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mchmarny/buycheck/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

var (
	statsCmd = &urfave.Command{
		Name:            "stats",
		Usage:           "Show spending and saving statistics",
		UsageText:       "buycheck stats --format yaml",
		HideHelpCommand: true,
		Flags:           []urfave.Flag{serverURLFlag},
		Action:          cmdStats,
	}

	stateCmd = &urfave.Command{
		Name:            "state",
		Usage:           "Show record counts in the local database",
		HideHelpCommand: true,
		Action:          cmdState,
	}
)

func cmdStats(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	remote := serverURL(cmd, cfg)
	if remote == "" {
		s, err := data.GetStatistics(ctx, cfg.DB, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("getting statistics: %w", err)
		}
		return encode(cfg, s)
	}

	c, err := remoteClient(ctx, cfg, remote)
	if err != nil {
		return err
	}
	s, err := c.GetStatistics(ctx)
	if err != nil {
		return fmt.Errorf("getting statistics from %s: %w", remote, err)
	}
	return encode(cfg, s)
}

func cmdState(ctx context.Context, _ *urfave.Command) error {
	cfg := getConfig(ctx)

	state, err := data.GetDataState(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("getting data state: %w", err)
	}
	return encode(cfg, state)
}
