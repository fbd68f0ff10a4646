package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mchmarny/buycheck/pkg/cache"
	"github.com/mchmarny/buycheck/pkg/net"
	urfave "github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20
	serverHostDefault         = "127.0.0.1"
	redisPingSeconds          = 3

	statsCacheKey = "stats"
)

var (
	portFlag = &urfave.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen (default: config port)",
	}

	hostFlag = &urfave.StringFlag{
		Name:  "host",
		Usage: "Address on which the server will listen",
		Value: serverHostDefault,
	}

	redisAddrFlag = &urfave.StringFlag{
		Name:  "redis",
		Usage: "Redis address (host:port) for the statistics cache (default: in-memory)",
	}

	serverCmd = &urfave.Command{
		Name:            "server",
		Aliases:         []string{"serve"},
		Usage:           "Start the HTTP API server",
		HideHelpCommand: true,
		Action:          cmdStartServer,
		Flags: []urfave.Flag{
			portFlag,
			hostFlag,
			redisAddrFlag,
		},
	}
)

// api holds what the handlers share.
type api struct {
	db       *sql.DB
	cache    cache.Cache
	cacheTTL time.Duration
	token    string
}

func cmdStartServer(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	port := int(cmd.Int(portFlag.Name))
	if !cmd.IsSet(portFlag.Name) {
		port = cfg.Conf.Port
	}
	address := fmt.Sprintf("%s:%d", cmd.String(hostFlag.Name), port)

	c, closer, err := openCache(ctx, redisAddr(cmd, cfg))
	if err != nil {
		return err
	}
	defer closer()

	token, err := loadToken(cfg.Dir)
	if err != nil {
		return err
	}
	if token == "" {
		slog.Warn("no API token configured, the API accepts unauthenticated requests (see: buycheck token create)")
	}

	a := &api{
		db:       cfg.DB,
		cache:    c,
		cacheTTL: cfg.Conf.CacheTTL,
		token:    token,
	}

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(a),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address), "db", cfg.DSN)

	select {
	case <-done:
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func makeRouter(a *api) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+net.PathHealth, healthHandler)

	mux.HandleFunc("POST "+net.PathEvaluate, a.evaluateHandler)
	mux.HandleFunc("POST "+net.PathDecisions, a.createDecisionHandler)
	mux.HandleFunc("GET "+net.PathDecisions, a.listDecisionsHandler)
	mux.HandleFunc("GET "+net.PathDue, a.dueDecisionsHandler)
	mux.HandleFunc("GET "+net.PathDecisions+"/{id}", a.getDecisionHandler)
	mux.HandleFunc("DELETE "+net.PathDecisions+"/{id}", a.deleteDecisionHandler)
	mux.HandleFunc("GET "+net.PathStatistics, a.statisticsHandler)

	return withRequestID(withToken(a.token, mux))
}

func redisAddr(cmd *urfave.Command, cfg *appConfig) string {
	if addr := cmd.String(redisAddrFlag.Name); addr != "" {
		return addr
	}
	return cfg.Conf.RedisAddr
}

// openCache is swapped in tests.
var openCache = newCache

// newCache connects to Redis when addr is set, otherwise returns an in-memory cache.
func newCache(ctx context.Context, addr string) (cache.Cache, func(), error) {
	if addr == "" {
		slog.Debug("using in-memory cache")
		return cache.NewMemory(), func() {}, nil
	}

	r := cache.NewRedis(addr)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingSeconds*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	slog.Debug("using redis cache", "address", addr)
	return r, func() {
		if err := r.Close(); err != nil {
			slog.Debug("error closing redis client", "error", err)
		}
	}, nil
}

// invalidateStats drops cached statistics after a write.
func invalidateStats(c cache.Cache) func(context.Context) {
	return func(ctx context.Context) {
		if err := c.Delete(ctx, statsCacheKey); err != nil {
			slog.Warn("failed to invalidate statistics cache", "error", err)
		}
	}
}

// dropSharedStats clears statistics a server may have cached in the shared
// Redis after a local write. Failures only warn since the entry expires anyway.
func dropSharedStats(ctx context.Context, addr string) {
	if addr == "" {
		return
	}

	c, closer, err := openCache(ctx, addr)
	if err != nil {
		slog.Warn("statistics cache not invalidated", "error", err)
		return
	}
	defer closer()
	invalidateStats(c)(ctx)
}
