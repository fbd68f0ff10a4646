package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mchmarny/buycheck/pkg/data"
	"github.com/mchmarny/buycheck/pkg/logging"
	"github.com/mchmarny/buycheck/pkg/net"
	"github.com/mchmarny/buycheck/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

var (
	itemNameFlag = &urfave.StringFlag{
		Name:     "item",
		Usage:    "Name of the item you are thinking of buying",
		Required: true,
	}

	serverURLFlag = &urfave.StringFlag{
		Name:    "server",
		Usage:   "Use a running buycheck server instead of the local database (e.g. http://127.0.0.1:8080)",
		Sources: urfave.EnvVars("BUYCHECK_SERVER"),
	}

	evaluateCmd = &urfave.Command{
		Name:    "evaluate",
		Aliases: []string{"eval"},
		Usage:   "Score an intended purchase without saving it",
		UsageText: `buycheck evaluate --necessity 4 --future-use 3 --budget-burden 2 --emotion excited --trigger advertising --can-wait
   buycheck eval --necessity 5 --future-use 5 --budget-burden 1 --format yaml`,
		HideHelpCommand: true,
		Flags:           answerFlags,
		Action:          cmdEvaluate,
	}

	decideCmd = &urfave.Command{
		Name:  "decide",
		Usage: "Score an intended purchase and record the decision",
		UsageText: `buycheck decide --item "film camera" --price 450 --category hobby --necessity 2 --future-use 3 --budget-burden 4
   buycheck decide --item "desk chair" --server http://127.0.0.1:8080 --necessity 5 --future-use 5 --budget-burden 2`,
		HideHelpCommand: true,
		Flags:           append([]urfave.Flag{itemNameFlag, serverURLFlag, redisAddrFlag}, answerFlags...),
		Action:          cmdDecide,
	}
)

func cmdEvaluate(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	a := answersFromFlags(cmd)

	var (
		r   *score.Result
		err error
	)
	if remote := serverURL(cmd, cfg); remote != "" {
		r, err = evaluateRemote(ctx, cfg, remote, a)
	} else {
		r, err = score.Evaluate(a)
		if err != nil {
			err = fmt.Errorf("evaluating answers: %w", err)
		}
	}
	if err != nil {
		return err
	}

	printVerdict(r)
	return encode(cfg, r)
}

func cmdDecide(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	a := answersFromFlags(cmd)
	item := cmd.String(itemNameFlag.Name)

	var (
		d   *data.Decision
		err error
	)
	if remote := serverURL(cmd, cfg); remote != "" {
		d, err = decideRemote(ctx, cfg, remote, item, a)
	} else {
		d, err = decideLocal(ctx, cfg, item, a)
		if err == nil {
			dropSharedStats(ctx, redisAddr(cmd, cfg))
		}
	}
	if err != nil {
		return err
	}

	printVerdict(&d.Result)
	if d.Conclusion == score.ConclusionDelay {
		slog.Info("reconsider later", "id", d.ID, "due", d.DueAt().Local().Format("2006-01-02 15:04"))
	}
	return encode(cfg, d)
}

func decideLocal(ctx context.Context, cfg *appConfig, item string, a score.Answers) (*data.Decision, error) {
	item, err := data.ValidateItemName(item)
	if err != nil {
		return nil, err
	}

	r, err := score.Evaluate(a)
	if err != nil {
		return nil, fmt.Errorf("evaluating answers: %w", err)
	}

	d, err := data.SaveDecision(ctx, cfg.DB, item, a, r)
	if err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}
	slog.Debug("decision saved", "id", d.ID, "uid", d.UID)
	return d, nil
}

func decideRemote(ctx context.Context, cfg *appConfig, url, item string, a score.Answers) (*data.Decision, error) {
	c, err := remoteClient(ctx, cfg, url)
	if err != nil {
		return nil, err
	}

	d, err := c.CreateDecision(ctx, &net.DecisionRequest{ItemName: item, Answers: a})
	if err != nil {
		return nil, fmt.Errorf("sending decision to %s: %w", url, err)
	}
	slog.Debug("decision sent", "server", url, "id", d.ID)
	return d, nil
}

func evaluateRemote(ctx context.Context, cfg *appConfig, url string, a score.Answers) (*score.Result, error) {
	c, err := remoteClient(ctx, cfg, url)
	if err != nil {
		return nil, err
	}

	r, err := c.Evaluate(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("evaluating on %s: %w", url, err)
	}
	return r, nil
}

// serverURL returns the remote server from the flag or config, empty for local mode.
func serverURL(cmd *urfave.Command, cfg *appConfig) string {
	if s := cmd.String(serverURLFlag.Name); s != "" {
		return s
	}
	return cfg.Conf.Server
}

func remoteClient(ctx context.Context, cfg *appConfig, url string) (*net.Client, error) {
	token, err := loadToken(cfg.Dir)
	if err != nil {
		return nil, err
	}

	c, err := net.NewClient(ctx, url, token)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return c, nil
}

func printVerdict(r *score.Result) {
	if r == nil || len(r.Comments) == 0 {
		return
	}
	fmt.Fprintln(stderr, logging.Verdict(string(r.Conclusion),
		fmt.Sprintf("%s (%.1f): %s", strings.ToUpper(string(r.Conclusion)), r.TotalScore, r.Comments[0])))
}
