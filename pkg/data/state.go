package data

import (
	"context"
	"database/sql"

	"github.com/mchmarny/buycheck/pkg/score"
	"github.com/pkg/errors"
)

const (
	stateKeyDecisions = "decisions"
	stateKeyCategory  = "categories"
	stateKeyVersion   = "schema_version"

	countDecisionsSQL          = `SELECT COUNT(*) FROM decision`
	countDecisionsByVerdictSQL = `SELECT COUNT(*) FROM decision WHERE conclusion = ?`
	countDistinctCategorySQL   = `SELECT COUNT(DISTINCT category) FROM decision`
)

var stateQueries = map[string]string{
	stateKeyDecisions: countDecisionsSQL,
	stateKeyCategory:  countDistinctCategorySQL,
	stateKeyVersion:   selectSchemaVersionSQL,
}

// GetDataState returns row counts describing the current content of the database.
func GetDataState(ctx context.Context, db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, q := range stateQueries {
		count, err := getCount(ctx, db, q)
		if err != nil {
			return nil, errors.Wrapf(err, "error getting %s count", k)
		}
		state[k] = count
	}

	for _, c := range score.Conclusions {
		count, err := getCount(ctx, db, rebind(db, countDecisionsByVerdictSQL), string(c))
		if err != nil {
			return nil, errors.Wrapf(err, "error getting %s count", c)
		}
		state[string(c)] = count
	}

	return state, nil
}

func getCount(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to scan row")
	}
	return count, nil
}
