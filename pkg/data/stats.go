package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/mchmarny/buycheck/pkg/score"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	monthsLimit = 12
	percent     = 100

	selectSummarySQL = `SELECT
			COUNT(*) AS total_decisions,
			COALESCE(SUM(CASE WHEN conclusion = ? THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(SUM(CASE WHEN conclusion = ? THEN 1 ELSE 0 END), 0) AS delayed,
			COALESCE(SUM(CASE WHEN conclusion = ? THEN 1 ELSE 0 END), 0) AS rejected,
			COALESCE(SUM(price), 0) AS total_amount,
			COALESCE(SUM(CASE WHEN conclusion != ? THEN price ELSE 0 END), 0) AS saved_amount
		FROM decision
	`

	selectByCategorySQL = `SELECT
			category,
			COUNT(*) AS cnt,
			COALESCE(SUM(price), 0) AS total_amount,
			COALESCE(AVG(total_score), 0) AS avg_score
		FROM decision
		GROUP BY category
		ORDER BY cnt DESC, category
	`

	// created_at is stored as RFC3339 UTC text so the first 7 chars are YYYY-MM in both dialects.
	selectByMonthSQL = `SELECT
			substr(created_at, 1, 7) AS month,
			COUNT(*) AS cnt,
			COALESCE(SUM(CASE WHEN conclusion = ? THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(SUM(CASE WHEN conclusion = ? THEN 1 ELSE 0 END), 0) AS delayed,
			COALESCE(SUM(CASE WHEN conclusion = ? THEN 1 ELSE 0 END), 0) AS rejected,
			COALESCE(SUM(price), 0) AS total_amount,
			COALESCE(SUM(CASE WHEN conclusion != ? THEN price ELSE 0 END), 0) AS saved_amount
		FROM decision
		GROUP BY substr(created_at, 1, 7)
		ORDER BY month DESC
		LIMIT ?
	`

	selectCountSinceSQL = `SELECT COUNT(*) FROM decision WHERE created_at >= ?`
)

type Summary struct {
	TotalDecisions int64   `json:"total_decisions" yaml:"totalDecisions"`
	Approved       int64   `json:"approved" yaml:"approved"`
	Delayed        int64   `json:"delayed" yaml:"delayed"`
	Rejected       int64   `json:"rejected" yaml:"rejected"`
	TotalAmount    float64 `json:"total_amount" yaml:"totalAmount"`
	SavedAmount    float64 `json:"saved_amount" yaml:"savedAmount"`
	SavedRate      float64 `json:"saved_rate" yaml:"savedRate"`
}

type CategoryStat struct {
	Category    score.Category `json:"category" yaml:"category"`
	Count       int64          `json:"count" yaml:"count"`
	TotalAmount float64        `json:"total_amount" yaml:"totalAmount"`
	AvgScore    float64        `json:"avg_score" yaml:"avgScore"`
}

type MonthStat struct {
	Month       string  `json:"month" yaml:"month"`
	Count       int64   `json:"count" yaml:"count"`
	Approved    int64   `json:"approved" yaml:"approved"`
	Delayed     int64   `json:"delayed" yaml:"delayed"`
	Rejected    int64   `json:"rejected" yaml:"rejected"`
	TotalAmount float64 `json:"total_amount" yaml:"totalAmount"`
	SavedAmount float64 `json:"saved_amount" yaml:"savedAmount"`
}

type RecentTrends struct {
	Last7Days  int64 `json:"last_7_days" yaml:"last7Days"`
	Last30Days int64 `json:"last_30_days" yaml:"last30Days"`
}

type Statistics struct {
	Summary      Summary         `json:"summary" yaml:"summary"`
	ByCategory   []*CategoryStat `json:"by_category" yaml:"byCategory"`
	ByMonth      []*MonthStat    `json:"by_month" yaml:"byMonth"`
	RecentTrends RecentTrends    `json:"recent_trends" yaml:"recentTrends"`
}

// GetStatistics rolls up all stored decisions. Recent trends are counted relative to t.
func GetStatistics(ctx context.Context, db *sql.DB, t time.Time) (*Statistics, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s := &Statistics{
		ByCategory: make([]*CategoryStat, 0),
		ByMonth:    make([]*MonthStat, 0),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return getSummary(ctx, db, &s.Summary)
	})

	g.Go(func() error {
		list, err := getByCategory(ctx, db)
		if err != nil {
			return err
		}
		s.ByCategory = list
		return nil
	})

	g.Go(func() error {
		list, err := getByMonth(ctx, db)
		if err != nil {
			return err
		}
		s.ByMonth = list
		return nil
	})

	g.Go(func() error {
		return getRecentTrends(ctx, db, t, &s.RecentTrends)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s, nil
}

func getSummary(ctx context.Context, db *sql.DB, s *Summary) error {
	err := db.QueryRowContext(ctx, rebind(db, selectSummarySQL),
		string(score.ConclusionApprove),
		string(score.ConclusionDelay),
		string(score.ConclusionReject),
		string(score.ConclusionApprove),
	).Scan(
		&s.TotalDecisions,
		&s.Approved,
		&s.Delayed,
		&s.Rejected,
		&s.TotalAmount,
		&s.SavedAmount,
	)
	if err != nil {
		return errors.Wrap(err, "failed to query summary")
	}

	if s.TotalAmount > 0 {
		s.SavedRate = score.Round(s.SavedAmount / s.TotalAmount * percent)
	}
	return nil
}

func getByCategory(ctx context.Context, db *sql.DB) ([]*CategoryStat, error) {
	rows, err := db.QueryContext(ctx, selectByCategorySQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query category stats")
	}
	defer rows.Close()

	list := make([]*CategoryStat, 0)
	for rows.Next() {
		c := &CategoryStat{}
		var category string
		if err := rows.Scan(&category, &c.Count, &c.TotalAmount, &c.AvgScore); err != nil {
			return nil, errors.Wrap(err, "failed to scan category stats")
		}
		c.Category = score.Category(category)
		c.AvgScore = score.Round(c.AvgScore)
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate category stats")
	}
	return list, nil
}

func getByMonth(ctx context.Context, db *sql.DB) ([]*MonthStat, error) {
	rows, err := db.QueryContext(ctx, rebind(db, selectByMonthSQL),
		string(score.ConclusionApprove),
		string(score.ConclusionDelay),
		string(score.ConclusionReject),
		string(score.ConclusionApprove),
		monthsLimit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query month stats")
	}
	defer rows.Close()

	list := make([]*MonthStat, 0)
	for rows.Next() {
		m := &MonthStat{}
		if err := rows.Scan(&m.Month, &m.Count, &m.Approved, &m.Delayed, &m.Rejected, &m.TotalAmount, &m.SavedAmount); err != nil {
			return nil, errors.Wrap(err, "failed to scan month stats")
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate month stats")
	}
	return list, nil
}

func getRecentTrends(ctx context.Context, db *sql.DB, t time.Time, r *RecentTrends) error {
	q := rebind(db, selectCountSinceSQL)

	if err := db.QueryRowContext(ctx, q, formatTime(t.AddDate(0, 0, -7))).Scan(&r.Last7Days); err != nil {
		return errors.Wrap(err, "failed to count last 7 days")
	}
	if err := db.QueryRowContext(ctx, q, formatTime(t.AddDate(0, 0, -30))).Scan(&r.Last30Days); err != nil {
		return errors.Wrap(err, "failed to count last 30 days")
	}
	return nil
}
