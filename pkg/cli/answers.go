package cli

import (
	"fmt"
	"strings"

	"github.com/mchmarny/buycheck/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

var (
	necessityFlag = &urfave.IntFlag{
		Name:     "necessity",
		Usage:    "How necessary is the item [0-5]",
		Required: true,
	}

	hasSimilarFlag = &urfave.BoolFlag{
		Name:  "has-similar",
		Usage: "You already own something that does the same job",
	}

	futureUseFlag = &urfave.IntFlag{
		Name:     "future-use",
		Usage:    "How much will you use it [0-5]",
		Required: true,
	}

	budgetBurdenFlag = &urfave.IntFlag{
		Name:     "budget-burden",
		Usage:    "How much does the price strain your budget [0-5]",
		Required: true,
	}

	emotionalStateFlag = &urfave.StringFlag{
		Name:  "emotion",
		Usage: fmt.Sprintf("Current emotional state [%s]", joinEnum(score.EmotionalStates)),
		Value: string(score.EmotionalCalm),
	}

	triggerFlag = &urfave.StringFlag{
		Name:  "trigger",
		Usage: fmt.Sprintf("What triggered the purchase [%s]", joinEnum(score.PurchaseTriggers)),
		Value: string(score.TriggerGenuineNeed),
	}

	canWaitFlag = &urfave.BoolFlag{
		Name:  "can-wait",
		Usage: "The purchase can wait",
	}

	maintenanceFlag = &urfave.StringFlag{
		Name:  "maintenance",
		Usage: fmt.Sprintf("Does it carry ongoing costs [%s]", joinEnum(score.MaintenanceCosts)),
		Value: string(score.MaintenanceNo),
	}

	priceFlag = &urfave.FloatFlag{
		Name:  "price",
		Usage: "Item price",
	}

	categoryFlag = &urfave.StringFlag{
		Name:  "category",
		Usage: fmt.Sprintf("Item category [%s]", joinEnum(score.Categories)),
		Value: string(score.CategoryOther),
	}

	answerFlags = []urfave.Flag{
		necessityFlag,
		hasSimilarFlag,
		futureUseFlag,
		budgetBurdenFlag,
		emotionalStateFlag,
		triggerFlag,
		canWaitFlag,
		maintenanceFlag,
		priceFlag,
		categoryFlag,
	}
)

func answersFromFlags(cmd *urfave.Command) score.Answers {
	return score.Answers{
		Necessity:       int(cmd.Int(necessityFlag.Name)),
		HasSimilar:      cmd.Bool(hasSimilarFlag.Name),
		FutureUse:       int(cmd.Int(futureUseFlag.Name)),
		BudgetBurden:    int(cmd.Int(budgetBurdenFlag.Name)),
		EmotionalState:  score.EmotionalState(cmd.String(emotionalStateFlag.Name)),
		PurchaseTrigger: score.PurchaseTrigger(cmd.String(triggerFlag.Name)),
		CanWait:         cmd.Bool(canWaitFlag.Name),
		MaintenanceCost: score.MaintenanceCost(cmd.String(maintenanceFlag.Name)),
		Price:           cmd.Float(priceFlag.Name),
		Category:        score.Category(cmd.String(categoryFlag.Name)),
	}
}

func joinEnum[T ~string](list []T) string {
	s := make([]string, len(list))
	for i, v := range list {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
