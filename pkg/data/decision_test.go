package data

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/mchmarny/buycheck/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnswers() score.Answers {
	return score.Answers{
		Necessity:       4,
		HasSimilar:      true,
		FutureUse:       3,
		BudgetBurden:    2,
		EmotionalState:  score.EmotionalExcited,
		PurchaseTrigger: score.TriggerAdvertising,
		CanWait:         true,
		MaintenanceCost: score.MaintenanceUnsure,
		Price:           249.99,
		Category:        score.CategoryHobby,
	}
}

func pinNow(t *testing.T, ts time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = orig })
}

func saveTestDecision(t *testing.T, db *sql.DB, name string, a score.Answers) *Decision {
	t.Helper()
	r, err := score.Evaluate(a)
	require.NoError(t, err)
	d, err := SaveDecision(context.Background(), db, name, a, r)
	require.NoError(t, err)
	return d
}

func TestSaveDecision_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pinNow(t, time.Date(2026, 3, 14, 9, 26, 53, 589, time.UTC))

	a := testAnswers()
	r, err := score.Evaluate(a)
	require.NoError(t, err)

	saved, err := SaveDecision(ctx, db, "  film camera ", a, r)
	require.NoError(t, err)
	assert.Greater(t, saved.ID, int64(0))
	assert.NotEmpty(t, saved.UID)
	assert.Equal(t, "film camera", saved.ItemName)

	got, err := GetDecision(ctx, db, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.UID, got.UID)
	assert.Equal(t, a, got.Answers)
	assert.Equal(t, *r, got.Result)
	assert.Equal(t, r.Comments, got.Comments)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), got.CreatedAt)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestSaveDecision_Validation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := testAnswers()
	r, err := score.Evaluate(a)
	require.NoError(t, err)

	_, err = SaveDecision(ctx, nil, "x", a, r)
	assert.Error(t, err)

	_, err = SaveDecision(ctx, db, "   ", a, r)
	assert.ErrorIs(t, err, ErrInvalidItemName)

	_, err = SaveDecision(ctx, db, "x", a, nil)
	assert.Error(t, err)
}

func TestValidateItemName(t *testing.T) {
	name, err := ValidateItemName("  espresso machine ")
	require.NoError(t, err)
	assert.Equal(t, "espresso machine", name)

	_, err = ValidateItemName(strings.Repeat("ж", ItemNameMaxLen))
	assert.NoError(t, err)

	_, err = ValidateItemName(strings.Repeat("a", ItemNameMaxLen+1))
	assert.ErrorIs(t, err, ErrInvalidItemName)

	_, err = ValidateItemName("")
	assert.ErrorIs(t, err, ErrInvalidItemName)
}

func TestGetDecision_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := GetDecision(context.Background(), db, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDecision_NilDB(t *testing.T) {
	_, err := GetDecision(context.Background(), nil, 1)
	assert.Error(t, err)
}

func TestListDecisions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	pinNow(t, base)
	first := saveTestDecision(t, db, "desk lamp", testAnswers())

	pinNow(t, base.Add(time.Hour))
	work := testAnswers()
	work.Category = score.CategoryWork
	work.Necessity = 5
	work.FutureUse = 5
	work.HasSimilar = false
	work.EmotionalState = score.EmotionalCalm
	work.PurchaseTrigger = score.TriggerGenuineNeed
	second := saveTestDecision(t, db, "keyboard", work)
	require.Equal(t, score.ConclusionApprove, second.Conclusion)

	list, err := ListDecisions(ctx, db, ListCriteria{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	list, err = ListDecisions(ctx, db, ListCriteria{Category: score.CategoryWork})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "keyboard", list[0].ItemName)

	list, err = ListDecisions(ctx, db, ListCriteria{Conclusion: score.ConclusionApprove})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	list, err = ListDecisions(ctx, db, ListCriteria{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = ListDecisions(ctx, db, ListCriteria{Conclusion: score.ConclusionReject, Category: score.CategoryWork})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListDue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	delayed := score.Answers{
		Necessity:       3,
		HasSimilar:      false,
		FutureUse:       2,
		BudgetBurden:    3,
		EmotionalState:  score.EmotionalCalm,
		PurchaseTrigger: score.TriggerRecommendation,
		CanWait:         true,
		MaintenanceCost: score.MaintenanceNo,
		Price:           60,
		Category:        score.CategoryOther,
	}

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	pinNow(t, base)
	old := saveTestDecision(t, db, "headphones", delayed)
	require.Equal(t, score.ConclusionDelay, old.Conclusion)

	pinNow(t, base.Add(24*time.Hour))
	saveTestDecision(t, db, "sneakers", delayed)

	list, err := ListDue(ctx, db, base.Add(47*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = ListDue(ctx, db, base.Add(DelayWindow))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, old.ID, list[0].ID)
	assert.Equal(t, base.Add(DelayWindow), list[0].DueAt())

	list, err = ListDue(ctx, db, base.Add(96*time.Hour))
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDeleteDecision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := saveTestDecision(t, db, "tablet", testAnswers())
	require.NoError(t, DeleteDecision(ctx, db, d.ID))

	_, err := GetDecision(ctx, db, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, DeleteDecision(ctx, db, d.ID), ErrNotFound)
}
