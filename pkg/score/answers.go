package score

import (
	"fmt"
	"math"
)

const (
	SliderMin = 0
	SliderMax = 5
)

type EmotionalState string

const (
	EmotionalCalm      EmotionalState = "calm"
	EmotionalStressed  EmotionalState = "stressed"
	EmotionalDepressed EmotionalState = "depressed"
	EmotionalExcited   EmotionalState = "excited"
)

// EmotionalStates lists every valid emotional state in questionnaire order.
var EmotionalStates = []EmotionalState{
	EmotionalCalm,
	EmotionalStressed,
	EmotionalDepressed,
	EmotionalExcited,
}

type PurchaseTrigger string

const (
	TriggerGenuineNeed     PurchaseTrigger = "genuine-need"
	TriggerRecommendation  PurchaseTrigger = "recommendation"
	TriggerAdvertising     PurchaseTrigger = "advertising"
	TriggerImpulseSighting PurchaseTrigger = "impulse-sighting"
)

var PurchaseTriggers = []PurchaseTrigger{
	TriggerGenuineNeed,
	TriggerRecommendation,
	TriggerAdvertising,
	TriggerImpulseSighting,
}

type MaintenanceCost string

const (
	MaintenanceYes    MaintenanceCost = "yes"
	MaintenanceNo     MaintenanceCost = "no"
	MaintenanceUnsure MaintenanceCost = "unsure"
)

var MaintenanceCosts = []MaintenanceCost{
	MaintenanceYes,
	MaintenanceNo,
	MaintenanceUnsure,
}

type Category string

const (
	CategoryEssential Category = "essential"
	CategoryWork      Category = "work"
	CategoryHobby     Category = "hobby"
	CategoryOther     Category = "other"
)

var Categories = []Category{
	CategoryEssential,
	CategoryWork,
	CategoryHobby,
	CategoryOther,
}

// Answers is the filled-in questionnaire for a single intended purchase.
// Price and Category are carried through to storage and are not scored.
type Answers struct {
	Necessity       int             `json:"necessity" yaml:"necessity"`
	HasSimilar      bool            `json:"has_similar" yaml:"hasSimilar"`
	FutureUse       int             `json:"future_use" yaml:"futureUse"`
	BudgetBurden    int             `json:"budget_burden" yaml:"budgetBurden"`
	EmotionalState  EmotionalState  `json:"emotional_state" yaml:"emotionalState"`
	PurchaseTrigger PurchaseTrigger `json:"purchase_trigger" yaml:"purchaseTrigger"`
	CanWait         bool            `json:"can_wait" yaml:"canWait"`
	MaintenanceCost MaintenanceCost `json:"maintenance_cost" yaml:"maintenanceCost"`
	Price           float64         `json:"price" yaml:"price"`
	Category        Category        `json:"category" yaml:"category"`
}

// AnswerFields lists the questionnaire keys in declaration order.
var AnswerFields = []string{
	"necessity",
	"has_similar",
	"future_use",
	"budget_burden",
	"emotional_state",
	"purchase_trigger",
	"can_wait",
	"maintenance_cost",
	"price",
	"category",
}

// Validate returns an *InvalidInputError for the first field, in declaration
// order, that holds a value outside its declared range or set.
func (a Answers) Validate() error {
	if err := checkSlider("necessity", a.Necessity); err != nil {
		return err
	}
	if err := checkSlider("future_use", a.FutureUse); err != nil {
		return err
	}
	if err := checkSlider("budget_burden", a.BudgetBurden); err != nil {
		return err
	}
	if _, err := emotionalWeight(a.EmotionalState); err != nil {
		return err
	}
	if _, err := triggerWeight(a.PurchaseTrigger); err != nil {
		return err
	}
	if _, err := maintenanceWeight(a.MaintenanceCost); err != nil {
		return err
	}
	if math.IsNaN(a.Price) || math.IsInf(a.Price, 0) || a.Price < 0 {
		return invalid("price", a.Price)
	}
	if !a.Category.valid() {
		return invalid("category", a.Category)
	}
	return nil
}

func (c Category) valid() bool {
	switch c {
	case CategoryEssential, CategoryWork, CategoryHobby, CategoryOther:
		return true
	default:
		return false
	}
}

func checkSlider(field string, v int) error {
	if v < SliderMin || v > SliderMax {
		return invalid(field, v)
	}
	return nil
}

func invalid(field string, v any) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: fmt.Sprint(v)}
}
