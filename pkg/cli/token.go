package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mchmarny/buycheck/pkg/auth"
	urfave "github.com/urfave/cli/v3"
)

var (
	tokenCmd = &urfave.Command{
		Name:            "token",
		Usage:           "Manage the API token required by the server",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:   "create",
				Usage:  "Generate a new API token and store it in the OS keychain",
				Action: cmdTokenCreate,
			},
			{
				Name:   "show",
				Usage:  "Print the stored API token",
				Action: cmdTokenShow,
			},
			{
				Name:   "delete",
				Usage:  "Remove the stored API token; the server then accepts unauthenticated requests",
				Action: cmdTokenDelete,
			},
		},
	}
)

func cmdTokenCreate(ctx context.Context, _ *urfave.Command) error {
	cfg := getConfig(ctx)

	token := auth.NewToken()
	if err := auth.NewStore(cfg.Dir).Save(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	slog.Info("token saved, restart the server to apply it")
	fmt.Fprintln(stdout, token)
	return nil
}

func cmdTokenShow(ctx context.Context, _ *urfave.Command) error {
	cfg := getConfig(ctx)

	token, err := auth.NewStore(cfg.Dir).Load()
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func cmdTokenDelete(ctx context.Context, _ *urfave.Command) error {
	cfg := getConfig(ctx)

	if err := auth.NewStore(cfg.Dir).Delete(); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	slog.Info("token deleted")
	return nil
}

// loadToken returns the stored API token, or an empty string when none is configured.
func loadToken(dir string) (string, error) {
	token, err := auth.NewStore(dir).Load()
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			slog.Debug("no API token configured")
			return "", nil
		}
		return "", fmt.Errorf("loading token: %w", err)
	}
	return token, nil
}
