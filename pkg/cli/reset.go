package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/buycheck/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

var (
	yesFlag = &urfave.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}

	resetCmd = &urfave.Command{
		Name:            "reset",
		Usage:           "Delete all recorded decisions and start fresh",
		HideHelpCommand: true,
		Flags:           []urfave.Flag{yesFlag, redisAddrFlag},
		Action:          cmdReset,
	}
)

func cmdReset(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	if data.ParseDialect(cfg.DSN) != data.SQLite {
		return errors.New("reset only supports the local sqlite database")
	}

	if !cmd.Bool(yesFlag.Name) {
		fmt.Fprintf(stdout, "This will permanently delete all data in %s\n", cfg.DSN)
		fmt.Fprint(stdout, "Are you sure? [y/N]: ")

		reader := bufio.NewReader(stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	// close the DB before deleting the file
	if cfg.DB != nil {
		cfg.DB.Close()
		cfg.DB = nil
	}

	if err := os.Remove(cfg.DSN); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting database: %w", err)
	}

	slog.Info("database deleted", "path", cfg.DSN)

	// re-initialize empty database
	if err := data.Init(cfg.DSN); err != nil {
		return fmt.Errorf("re-initializing database: %w", err)
	}

	slog.Info("database re-initialized", "path", cfg.DSN)
	dropSharedStats(ctx, redisAddr(cmd, cfg))
	fmt.Fprintln(stdout, "Reset complete.")
	return nil
}
