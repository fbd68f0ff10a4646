package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/buycheck/pkg/config"
	"github.com/mchmarny/buycheck/pkg/data"
	"github.com/mchmarny/buycheck/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "buycheck"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	// swapped in tests
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFlag = &urfave.StringFlag{
		Name:    "db",
		Usage:   "Path to the Sqlite database file or a postgres:// URL",
		Sources: urfave.EnvVars("BUYCHECK_DB"),
	}

	configDirFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: "Directory holding config.yaml and the default database (default: $HOME/.buycheck)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

type appConfigKey struct{}

type appConfig struct {
	Dir    string
	DSN    string
	Debug  bool
	Format string
	Conf   *config.Config
	DB     *sql.DB
}

func getConfig(ctx context.Context) *appConfig {
	cfg, ok := ctx.Value(appConfigKey{}).(*appConfig)
	if !ok {
		return &appConfig{Format: formatJSON, Conf: &config.Config{}}
	}
	return cfg
}

// Execute creates and runs the CLI application.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	logging.SetDefaultCLILogger(config.LogLevelDefault)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newApp() *urfave.Command {
	cfg := &appConfig{}

	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Score an intended purchase: approve, wait 48 hours, or skip it",
		Flags: []urfave.Flag{
			debugFlag,
			dbFlag,
			configDirFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			evaluateCmd,
			decideCmd,
			listCmd,
			showCmd,
			deleteCmd,
			dueCmd,
			statsCmd,
			stateCmd,
			resetCmd,
			serverCmd,
			tokenCmd,
			mcpCmd,
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			dir := cmd.String(configDirFlag.Name)
			if dir == "" {
				d, _, err := config.GetOrCreateHomeDir(appName)
				if err != nil {
					return ctx, fmt.Errorf("resolving home dir: %w", err)
				}
				dir = d
			}

			conf, err := config.ReadOrCreate(dir)
			if err != nil {
				return ctx, fmt.Errorf("reading config: %w", err)
			}

			cfg.Dir = dir
			cfg.Conf = conf
			cfg.Debug = cmd.Bool(debugFlag.Name)
			initLogging(cfg.Debug, conf.LogLevel)

			if cfg.Format, err = parseFormat(cmd.String(formatFlag.Name)); err != nil {
				return ctx, err
			}

			cfg.DSN = resolveDSN(cmd.String(dbFlag.Name), conf.DB, dir)

			if err := data.Init(cfg.DSN); err != nil {
				return ctx, fmt.Errorf("initializing database: %w", err)
			}

			db, err := data.GetDB(cfg.DSN)
			if err != nil {
				return ctx, fmt.Errorf("opening database: %w", err)
			}
			cfg.DB = db

			return context.WithValue(ctx, appConfigKey{}, cfg), nil
		},
		After: func(_ context.Context, _ *urfave.Command) error {
			if cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// resolveDSN picks the database: flag, then config file, then the default file in dir.
func resolveDSN(flag, conf, dir string) string {
	if flag != "" {
		return flag
	}
	if conf != "" {
		return conf
	}
	return filepath.Join(dir, data.DataFileName)
}

func initLogging(debug bool, level string) {
	if debug {
		level = "debug"
	}
	logging.SetDefaultCLILogger(level)
}

func encode(cfg *appConfig, v any) error {
	if cfg.Format == formatYAML {
		e := yaml.NewEncoder(stdout)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

var errInvalidFormat = errors.New("invalid output format")

func parseFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (json, yaml)", errInvalidFormat, f)
	}
}
