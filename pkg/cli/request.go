package cli

import (
	"github.com/mchmarny/buycheck/pkg/score"
)

// answersRequest is the questionnaire as it arrives over HTTP. Pointer fields
// tell a missing key apart from a zero answer.
type answersRequest struct {
	Necessity       *int                   `json:"necessity"`
	HasSimilar      *bool                  `json:"has_similar"`
	FutureUse       *int                   `json:"future_use"`
	BudgetBurden    *int                   `json:"budget_burden"`
	EmotionalState  *score.EmotionalState  `json:"emotional_state"`
	PurchaseTrigger *score.PurchaseTrigger `json:"purchase_trigger"`
	CanWait         *bool                  `json:"can_wait"`
	MaintenanceCost *score.MaintenanceCost `json:"maintenance_cost"`
	Price           *float64               `json:"price"`
	Category        *score.Category        `json:"category"`
}

type decisionRequest struct {
	ItemName string `json:"item_name"`
	answersRequest
}

// answers returns the filled-in questionnaire, or a missing-field error for
// the first absent key in declaration order.
func (r *answersRequest) answers() (score.Answers, error) {
	var a score.Answers

	present := []bool{
		r.Necessity != nil,
		r.HasSimilar != nil,
		r.FutureUse != nil,
		r.BudgetBurden != nil,
		r.EmotionalState != nil,
		r.PurchaseTrigger != nil,
		r.CanWait != nil,
		r.MaintenanceCost != nil,
		r.Price != nil,
		r.Category != nil,
	}
	for i, ok := range present {
		if !ok {
			return a, score.MissingField(score.AnswerFields[i])
		}
	}

	a = score.Answers{
		Necessity:       *r.Necessity,
		HasSimilar:      *r.HasSimilar,
		FutureUse:       *r.FutureUse,
		BudgetBurden:    *r.BudgetBurden,
		EmotionalState:  *r.EmotionalState,
		PurchaseTrigger: *r.PurchaseTrigger,
		CanWait:         *r.CanWait,
		MaintenanceCost: *r.MaintenanceCost,
		Price:           *r.Price,
		Category:        *r.Category,
	}
	return a, nil
}
