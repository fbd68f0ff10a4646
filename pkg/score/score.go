// Package score turns a purchase questionnaire into weighted sub-scores, a
// total and a verdict.
//
// The engine holds no state: Evaluate depends only on its argument and is
// safe to call from any number of goroutines.
package score

import (
	"fmt"
	"math"
)

type Conclusion string

const (
	ConclusionApprove Conclusion = "approve"
	ConclusionDelay   Conclusion = "delay-48h"
	ConclusionReject  Conclusion = "reject"
)

var Conclusions = []Conclusion{
	ConclusionApprove,
	ConclusionDelay,
	ConclusionReject,
}

const (
	ApproveThreshold = 5.0
	DelayThreshold   = 0.0

	CommentApprove = "judged to be a reasonable purchase"
	CommentDelay   = "recommended to reconsider after 48 hours"
	CommentReject  = "high likelihood of regret"

	CommentDailyInconvenience = "would cause significant daily inconvenience if not bought"
	CommentFrequentUse        = "expected to be used frequently long-term"
	commentEmotionalFormat    = "current emotional state (%s) is elevating purchase urge"
	CommentImpulsiveMotive    = "impulsive motive detected"
	CommentCanWait            = "can afford to wait and reconsider"
	CommentBudgetStrain       = "significant strain relative to this month's budget"
	CommentSimilarOwned       = "a functionally similar item is already owned"
	CommentRecurringCost      = "additional recurring cost likely"
	CommentVerifyCost         = "verify possibility of additional cost"

	highSlider      = 4
	elevatedWeight  = 3
	similarPenalty  = 3
	noSimilarBonus  = 3
	waitAdjustment  = 2
	necessityFactor = 2.0
	futureUseFactor = 1.5
	budgetFactor    = 2.0
)

// Result is the scored outcome of a single questionnaire.
type Result struct {
	NecessityScore    float64    `json:"necessity_score" yaml:"necessityScore"`
	RegretRisk        float64    `json:"regret_risk" yaml:"regretRisk"`
	BudgetBurdenScore float64    `json:"budget_burden_score" yaml:"budgetBurdenScore"`
	DuplicateCost     float64    `json:"duplicate_cost" yaml:"duplicateCost"`
	TotalScore        float64    `json:"total_score" yaml:"totalScore"`
	Conclusion        Conclusion `json:"conclusion" yaml:"conclusion"`
	Comments          []string   `json:"comments" yaml:"comments"`
}

// EmotionalComment returns the advisory emitted for an elevating emotional state.
func EmotionalComment(s EmotionalState) string {
	return fmt.Sprintf(commentEmotionalFormat, s)
}

// Evaluate scores the answers. It returns an *InvalidInputError when any
// field is out of range; no partial result is returned in that case.
func Evaluate(a Answers) (*Result, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	comments := make([]string, 0, 8)

	// necessity (N)
	n := float64(a.Necessity)*necessityFactor + float64(a.FutureUse)*futureUseFactor
	if !a.HasSimilar {
		n += noSimilarBonus
	}
	if a.Necessity >= highSlider {
		comments = append(comments, CommentDailyInconvenience)
	}
	if a.FutureUse >= highSlider {
		comments = append(comments, CommentFrequentUse)
	}

	// regret risk (R)
	ew, _ := emotionalWeight(a.EmotionalState)
	tw, _ := triggerWeight(a.PurchaseTrigger)
	r := float64(ew + tw)
	if a.CanWait {
		r += waitAdjustment
	} else {
		r -= waitAdjustment
	}
	if ew >= elevatedWeight {
		comments = append(comments, EmotionalComment(a.EmotionalState))
	}
	if tw >= elevatedWeight {
		comments = append(comments, CommentImpulsiveMotive)
	}
	if a.CanWait {
		comments = append(comments, CommentCanWait)
	}

	// budget burden (B)
	b := float64(a.BudgetBurden) * budgetFactor
	if a.BudgetBurden >= highSlider {
		comments = append(comments, CommentBudgetStrain)
	}

	// duplicate and maintenance cost (D)
	mw, _ := maintenanceWeight(a.MaintenanceCost)
	d := float64(mw)
	if a.HasSimilar {
		d += similarPenalty
		comments = append(comments, CommentSimilarOwned)
	}
	switch a.MaintenanceCost {
	case MaintenanceYes:
		comments = append(comments, CommentRecurringCost)
	case MaintenanceUnsure:
		comments = append(comments, CommentVerifyCost)
	}

	t := n - r - b - d
	c, verdict := Classify(t)

	return &Result{
		NecessityScore:    Round(n),
		RegretRisk:        Round(r),
		BudgetBurdenScore: Round(b),
		DuplicateCost:     Round(d),
		TotalScore:        Round(t),
		Conclusion:        c,
		Comments:          append([]string{verdict}, comments...),
	}, nil
}

// Classify maps a total score to its conclusion and verdict comment.
func Classify(total float64) (Conclusion, string) {
	switch {
	case total >= ApproveThreshold:
		return ConclusionApprove, CommentApprove
	case total >= DelayThreshold:
		return ConclusionDelay, CommentDelay
	default:
		return ConclusionReject, CommentReject
	}
}

// Round rounds half away from zero to one decimal place.
func Round(v float64) float64 {
	return math.Round(v*10) / 10
}

func emotionalWeight(s EmotionalState) (int, error) {
	switch s {
	case EmotionalCalm:
		return 0, nil
	case EmotionalStressed:
		return 3, nil
	case EmotionalDepressed:
		return 4, nil
	case EmotionalExcited:
		return 3, nil
	default:
		return 0, invalid("emotional_state", s)
	}
}

func triggerWeight(t PurchaseTrigger) (int, error) {
	switch t {
	case TriggerGenuineNeed:
		return 0, nil
	case TriggerRecommendation:
		return 1, nil
	case TriggerAdvertising:
		return 3, nil
	case TriggerImpulseSighting:
		return 4, nil
	default:
		return 0, invalid("purchase_trigger", t)
	}
}

func maintenanceWeight(m MaintenanceCost) (int, error) {
	switch m {
	case MaintenanceYes:
		return 2, nil
	case MaintenanceUnsure:
		return 1, nil
	case MaintenanceNo:
		return 0, nil
	default:
		return 0, invalid("maintenance_cost", m)
	}
}
