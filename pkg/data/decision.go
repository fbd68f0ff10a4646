package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mchmarny/buycheck/pkg/score"
	"github.com/pkg/errors"
)

const (
	timeLayout = "2006-01-02T15:04:05Z"

	// DelayWindow is how long a delay-48h decision waits before it is due for reconsideration.
	DelayWindow = 48 * time.Hour

	ListLimitDefault = 100
	ListLimitMax     = 1000

	ItemNameMaxLen = 200

	decisionColumns = `id,
			uid,
			item_name,
			price,
			category,
			necessity,
			has_similar,
			future_use,
			budget_burden,
			emotional_state,
			purchase_trigger,
			can_wait,
			maintenance_cost,
			necessity_score,
			regret_risk,
			budget_burden_score,
			duplicate_cost,
			total_score,
			conclusion,
			comments,
			created_at,
			updated_at`

	insertDecisionSQL = `INSERT INTO decision (
			uid,
			item_name,
			price,
			category,
			necessity,
			has_similar,
			future_use,
			budget_burden,
			emotional_state,
			purchase_trigger,
			can_wait,
			maintenance_cost,
			necessity_score,
			regret_risk,
			budget_burden_score,
			duplicate_cost,
			total_score,
			conclusion,
			comments,
			created_at,
			updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	selectDecisionSQL = `SELECT ` + decisionColumns + `
		FROM decision
		WHERE id = ?
	`

	listDecisionsSQL = `SELECT ` + decisionColumns + `
		FROM decision
		WHERE conclusion = COALESCE(?, conclusion)
		  AND category = COALESCE(?, category)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	listDueSQL = `SELECT ` + decisionColumns + `
		FROM decision
		WHERE conclusion = ?
		  AND created_at <= ?
		ORDER BY created_at, id
	`

	deleteDecisionSQL = `DELETE FROM decision WHERE id = ?`
)

// ErrInvalidItemName is returned for blank or overly long item names.
var ErrInvalidItemName = errors.Errorf("item name must be between 1 and %d characters", ItemNameMaxLen)

// now is replaced in tests to pin timestamps.
var now = func() time.Time {
	return time.Now().UTC()
}

// Decision is a scored questionnaire as persisted by the store.
type Decision struct {
	ID       int64  `json:"id" yaml:"id"`
	UID      string `json:"uid" yaml:"uid"`
	ItemName string `json:"item_name" yaml:"itemName"`

	score.Answers `yaml:",inline"`
	score.Result  `yaml:",inline"`

	CreatedAt time.Time `json:"created_at" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updatedAt"`
}

// DueAt is when a delayed decision becomes due for reconsideration.
func (d *Decision) DueAt() time.Time {
	return d.CreatedAt.Add(DelayWindow)
}

type ListCriteria struct {
	Conclusion score.Conclusion `json:"conclusion,omitempty" yaml:"conclusion,omitempty"`
	Category   score.Category   `json:"category,omitempty" yaml:"category,omitempty"`
	Limit      int              `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// ValidateItemName trims the name and checks its length in characters.
func ValidateItemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > ItemNameMaxLen {
		return "", ErrInvalidItemName
	}
	return name, nil
}

// SaveDecision persists the answers together with their already computed result.
func SaveDecision(ctx context.Context, db *sql.DB, itemName string, a score.Answers, r *score.Result) (*Decision, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if r == nil {
		return nil, errors.New("result required")
	}

	itemName, err := ValidateItemName(itemName)
	if err != nil {
		return nil, err
	}

	comments, err := json.Marshal(r.Comments)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal comments")
	}

	ts := now().Truncate(time.Second)
	d := &Decision{
		UID:       uuid.NewString(),
		ItemName:  itemName,
		Answers:   a,
		Result:    *r,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	d.Comments = append([]string(nil), r.Comments...)

	err = db.QueryRowContext(ctx, rebind(db, insertDecisionSQL),
		d.UID,
		d.ItemName,
		a.Price,
		string(a.Category),
		a.Necessity,
		a.HasSimilar,
		a.FutureUse,
		a.BudgetBurden,
		string(a.EmotionalState),
		string(a.PurchaseTrigger),
		a.CanWait,
		string(a.MaintenanceCost),
		r.NecessityScore,
		r.RegretRisk,
		r.BudgetBurdenScore,
		r.DuplicateCost,
		r.TotalScore,
		string(r.Conclusion),
		string(comments),
		formatTime(ts),
		formatTime(ts),
	).Scan(&d.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert decision")
	}

	return d, nil
}

func GetDecision(ctx context.Context, db *sql.DB, id int64) (*Decision, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	row := db.QueryRowContext(ctx, rebind(db, selectDecisionSQL), id)
	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get decision: %d", id)
	}
	return d, nil
}

// ListDecisions returns decisions newest first, optionally filtered by conclusion and category.
func ListDecisions(ctx context.Context, db *sql.DB, c ListCriteria) ([]*Decision, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	limit := c.Limit
	if limit <= 0 {
		limit = ListLimitDefault
	}
	if limit > ListLimitMax {
		limit = ListLimitMax
	}

	rows, err := db.QueryContext(ctx, rebind(db, listDecisionsSQL),
		optional(string(c.Conclusion)),
		optional(string(c.Category)),
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query decisions")
	}
	defer rows.Close()

	return scanDecisions(rows)
}

// ListDue returns delay-48h decisions whose reconsideration window has elapsed at t.
func ListDue(ctx context.Context, db *sql.DB, t time.Time) ([]*Decision, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	cutoff := t.UTC().Add(-DelayWindow)
	rows, err := db.QueryContext(ctx, rebind(db, listDueSQL), string(score.ConclusionDelay), formatTime(cutoff))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query due decisions")
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func DeleteDecision(ctx context.Context, db *sql.DB, id int64) error {
	if db == nil {
		return errDBNotInitialized
	}

	res, err := db.ExecContext(ctx, rebind(db, deleteDecisionSQL), id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete decision: %d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get affected rows")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecisions(rows *sql.Rows) ([]*Decision, error) {
	list := make([]*Decision, 0)
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan decision row")
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate decision rows")
	}
	return list, nil
}

func scanDecision(row rowScanner) (*Decision, error) {
	var (
		d          Decision
		comments   string
		created    string
		updated    string
		category   string
		state      string
		trigger    string
		maint      string
		conclusion string
	)

	err := row.Scan(
		&d.ID,
		&d.UID,
		&d.ItemName,
		&d.Price,
		&category,
		&d.Necessity,
		&d.HasSimilar,
		&d.FutureUse,
		&d.BudgetBurden,
		&state,
		&trigger,
		&d.CanWait,
		&maint,
		&d.NecessityScore,
		&d.RegretRisk,
		&d.BudgetBurdenScore,
		&d.DuplicateCost,
		&d.TotalScore,
		&conclusion,
		&comments,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	d.Category = score.Category(category)
	d.EmotionalState = score.EmotionalState(state)
	d.PurchaseTrigger = score.PurchaseTrigger(trigger)
	d.MaintenanceCost = score.MaintenanceCost(maint)
	d.Conclusion = score.Conclusion(conclusion)

	if err := json.Unmarshal([]byte(comments), &d.Comments); err != nil {
		return nil, errors.Wrapf(err, "failed to parse comments for decision: %d", d.ID)
	}
	if d.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &d, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp: %s", s)
	}
	return t, nil
}

func optional(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}
