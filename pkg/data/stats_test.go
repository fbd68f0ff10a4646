package data

import (
	"context"
	"testing"
	"time"

	"github.com/mchmarny/buycheck/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approveAnswers(price float64, c score.Category) score.Answers {
	return score.Answers{
		Necessity:       5,
		FutureUse:       5,
		EmotionalState:  score.EmotionalCalm,
		PurchaseTrigger: score.TriggerGenuineNeed,
		MaintenanceCost: score.MaintenanceNo,
		Price:           price,
		Category:        c,
	}
}

func rejectAnswers(price float64, c score.Category) score.Answers {
	return score.Answers{
		HasSimilar:      true,
		BudgetBurden:    5,
		EmotionalState:  score.EmotionalDepressed,
		PurchaseTrigger: score.TriggerImpulseSighting,
		MaintenanceCost: score.MaintenanceYes,
		Price:           price,
		Category:        c,
	}
}

func TestGetStatistics_EmptyDB(t *testing.T) {
	db := setupTestDB(t)

	s, err := GetStatistics(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s.Summary)
	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.ByMonth)
	assert.Equal(t, RecentTrends{}, s.RecentTrends)
}

func TestGetStatistics_NilDB(t *testing.T) {
	_, err := GetStatistics(context.Background(), nil, time.Now())
	assert.Error(t, err)
}

func TestGetStatistics_WithData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	feb := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	pinNow(t, feb)
	saveTestDecision(t, db, "rice cooker", approveAnswers(100, score.CategoryEssential))
	saveTestDecision(t, db, "game console", rejectAnswers(300, score.CategoryHobby))

	mar := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	pinNow(t, mar)
	saveTestDecision(t, db, "guitar pedal", rejectAnswers(100, score.CategoryHobby))

	s, err := GetStatistics(ctx, db, mar.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(3), s.Summary.TotalDecisions)
	assert.Equal(t, int64(1), s.Summary.Approved)
	assert.Equal(t, int64(0), s.Summary.Delayed)
	assert.Equal(t, int64(2), s.Summary.Rejected)
	assert.Equal(t, 500.0, s.Summary.TotalAmount)
	assert.Equal(t, 400.0, s.Summary.SavedAmount)
	assert.Equal(t, 80.0, s.Summary.SavedRate)

	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, score.CategoryHobby, s.ByCategory[0].Category)
	assert.Equal(t, int64(2), s.ByCategory[0].Count)
	assert.Equal(t, 400.0, s.ByCategory[0].TotalAmount)
	assert.Equal(t, -21.0, s.ByCategory[0].AvgScore)
	assert.Equal(t, score.CategoryEssential, s.ByCategory[1].Category)
	assert.Equal(t, 22.5, s.ByCategory[1].AvgScore)

	require.Len(t, s.ByMonth, 2)
	assert.Equal(t, "2026-03", s.ByMonth[0].Month)
	assert.Equal(t, int64(1), s.ByMonth[0].Count)
	assert.Equal(t, int64(1), s.ByMonth[0].Rejected)
	assert.Equal(t, 100.0, s.ByMonth[0].SavedAmount)
	assert.Equal(t, "2026-02", s.ByMonth[1].Month)
	assert.Equal(t, int64(2), s.ByMonth[1].Count)
	assert.Equal(t, int64(1), s.ByMonth[1].Approved)
	assert.Equal(t, 400.0, s.ByMonth[1].TotalAmount)
	assert.Equal(t, 300.0, s.ByMonth[1].SavedAmount)

	assert.Equal(t, int64(1), s.RecentTrends.Last7Days)
	assert.Equal(t, int64(1), s.RecentTrends.Last30Days)
}
