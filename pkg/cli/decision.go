package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mchmarny/buycheck/pkg/data"
	"github.com/mchmarny/buycheck/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

var (
	listLimitFlag = &urfave.IntFlag{
		Name:  "limit",
		Usage: "Limits number of decisions returned",
		Value: data.ListLimitDefault,
	}

	conclusionFilterFlag = &urfave.StringFlag{
		Name:  "conclusion",
		Usage: fmt.Sprintf("Only decisions with this conclusion [%s]", joinEnum(score.Conclusions)),
	}

	categoryFilterFlag = &urfave.StringFlag{
		Name:  "category",
		Usage: fmt.Sprintf("Only decisions in this category [%s]", joinEnum(score.Categories)),
	}

	listCmd = &urfave.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List recorded decisions, newest first",
		UsageText: `buycheck list --limit 10
   buycheck ls --conclusion reject --category hobby`,
		HideHelpCommand: true,
		Flags: []urfave.Flag{
			listLimitFlag,
			conclusionFilterFlag,
			categoryFilterFlag,
		},
		Action: cmdList,
	}

	showCmd = &urfave.Command{
		Name:            "show",
		Usage:           "Show a recorded decision",
		UsageText:       "buycheck show 42",
		HideHelpCommand: true,
		Action:          cmdShow,
	}

	deleteCmd = &urfave.Command{
		Name:            "delete",
		Aliases:         []string{"rm"},
		Usage:           "Delete a recorded decision",
		UsageText:       "buycheck delete 42",
		HideHelpCommand: true,
		Flags:           []urfave.Flag{redisAddrFlag},
		Action:          cmdDelete,
	}

	dueCmd = &urfave.Command{
		Name:            "due",
		Usage:           "List delayed decisions whose 48 hour wait is over",
		HideHelpCommand: true,
		Flags:           []urfave.Flag{serverURLFlag},
		Action:          cmdDue,
	}
)

func cmdList(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	c, err := listCriteria(
		cmd.String(conclusionFilterFlag.Name),
		cmd.String(categoryFilterFlag.Name),
		int(cmd.Int(listLimitFlag.Name)),
	)
	if err != nil {
		return err
	}

	list, err := data.ListDecisions(ctx, cfg.DB, c)
	if err != nil {
		return fmt.Errorf("listing decisions: %w", err)
	}
	return encode(cfg, list)
}

func cmdShow(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	id, err := parseID(cmd.Args().First())
	if err != nil {
		return err
	}

	d, err := data.GetDecision(ctx, cfg.DB, id)
	if err != nil {
		return fmt.Errorf("getting decision %d: %w", id, err)
	}
	return encode(cfg, d)
}

func cmdDelete(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	id, err := parseID(cmd.Args().First())
	if err != nil {
		return err
	}

	if err := data.DeleteDecision(ctx, cfg.DB, id); err != nil {
		return fmt.Errorf("deleting decision %d: %w", id, err)
	}
	dropSharedStats(ctx, redisAddr(cmd, cfg))
	slog.Info("decision deleted", "id", id)
	return nil
}

func cmdDue(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	var (
		list []*data.Decision
		err  error
	)
	if remote := serverURL(cmd, cfg); remote != "" {
		list, err = dueRemote(ctx, cfg, remote)
	} else {
		list, err = data.ListDue(ctx, cfg.DB, time.Now().UTC())
		if err != nil {
			err = fmt.Errorf("listing due decisions: %w", err)
		}
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		slog.Info("nothing due for reconsideration")
	}
	return encode(cfg, list)
}

func dueRemote(ctx context.Context, cfg *appConfig, url string) ([]*data.Decision, error) {
	c, err := remoteClient(ctx, cfg, url)
	if err != nil {
		return nil, err
	}

	list, err := c.ListDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing due decisions on %s: %w", url, err)
	}
	return list, nil
}

var errInvalidID = errors.New("decision id must be a positive integer")

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

// listCriteria validates list filters from flags or query parameters.
func listCriteria(conclusion, category string, limit int) (data.ListCriteria, error) {
	c := data.ListCriteria{Limit: limit}

	if conclusion != "" {
		c.Conclusion = score.Conclusion(conclusion)
		if !data.Contains(score.Conclusions, c.Conclusion) {
			return c, fmt.Errorf("invalid conclusion: %q", conclusion)
		}
	}

	if category != "" {
		c.Category = score.Category(category)
		if !data.Contains(score.Categories, c.Category) {
			return c, fmt.Errorf("invalid category: %q", category)
		}
	}

	if c.Limit < 0 || c.Limit > data.ListLimitMax {
		return c, fmt.Errorf("invalid limit: %d (max %d)", limit, data.ListLimitMax)
	}
	return c, nil
}
