// Package assist exposes the purchase scoring engine as MCP tools.
//
// Each tool follows the same shape:
// - a struct holding its dependencies, injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Invalid answers come back as tool error results so the calling agent can
// correct them; only unexpected failures surface as Go errors.
package assist

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mchmarny/buycheck/pkg/score"
)

// answerOptions is the shared questionnaire schema of evaluate_purchase and record_purchase.
func answerOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("necessity",
			mcp.Required(),
			mcp.Min(score.SliderMin), mcp.Max(score.SliderMax),
			mcp.Description("How inconvenient it would be not to buy it (0-5)"),
		),
		mcp.WithBoolean("has_similar",
			mcp.Required(),
			mcp.Description("Whether a functionally similar item is already owned"),
		),
		mcp.WithNumber("future_use",
			mcp.Required(),
			mcp.Min(score.SliderMin), mcp.Max(score.SliderMax),
			mcp.Description("Expected usage frequency three months from now (0-5)"),
		),
		mcp.WithNumber("budget_burden",
			mcp.Required(),
			mcp.Min(score.SliderMin), mcp.Max(score.SliderMax),
			mcp.Description("Financial strain of the price on this month's budget (0-5)"),
		),
		mcp.WithString("emotional_state",
			mcp.Required(),
			mcp.Enum(enumValues(score.EmotionalStates)...),
			mcp.Description("Current emotional state"),
		),
		mcp.WithString("purchase_trigger",
			mcp.Required(),
			mcp.Enum(enumValues(score.PurchaseTriggers)...),
			mcp.Description("What prompted the purchase"),
		),
		mcp.WithBoolean("can_wait",
			mcp.Required(),
			mcp.Description("Whether delaying the purchase by 1-2 weeks is acceptable"),
		),
		mcp.WithString("maintenance_cost",
			mcp.Required(),
			mcp.Enum(enumValues(score.MaintenanceCosts)...),
			mcp.Description("Whether recurring costs such as subscriptions are expected"),
		),
		mcp.WithNumber("price",
			mcp.Required(),
			mcp.Min(0),
			mcp.Description("Price of the item"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Enum(enumValues(score.Categories)...),
			mcp.Description("Purchase category"),
		),
	}
}

// answersFromRequest reads the questionnaire arguments and names the first
// missing one. Numbers that are not whole default to -1 so validation names them.
func answersFromRequest(req mcp.CallToolRequest) (score.Answers, error) {
	args := req.GetArguments()
	for _, k := range score.AnswerFields {
		if v, ok := args[k]; !ok || v == nil {
			return score.Answers{}, score.MissingField(k)
		}
	}

	return score.Answers{
		Necessity:       intArg(req, "necessity", -1),
		HasSimilar:      req.GetBool("has_similar", false),
		FutureUse:       intArg(req, "future_use", -1),
		BudgetBurden:    intArg(req, "budget_burden", -1),
		EmotionalState:  score.EmotionalState(req.GetString("emotional_state", "")),
		PurchaseTrigger: score.PurchaseTrigger(req.GetString("purchase_trigger", "")),
		CanWait:         req.GetBool("can_wait", false),
		MaintenanceCost: score.MaintenanceCost(req.GetString("maintenance_cost", "")),
		Price:           req.GetFloat("price", -1),
		Category:        score.Category(req.GetString("category", "")),
	}, nil
}

// intArg extracts an integer argument, returning defaultVal if the key is
// missing or not a whole number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok || v != float64(int(v)) {
		return defaultVal
	}
	return int(v)
}

func enumValues[T ~string](list []T) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, string(v))
	}
	return out
}

func formatResult(sb *strings.Builder, r *score.Result) {
	sb.WriteString(fmt.Sprintf("**Conclusion**: %s (total %.1f)\n\n", r.Conclusion, r.TotalScore))
	sb.WriteString(fmt.Sprintf("- Necessity (N): %.1f\n", r.NecessityScore))
	sb.WriteString(fmt.Sprintf("- Regret risk (R): %.1f\n", r.RegretRisk))
	sb.WriteString(fmt.Sprintf("- Budget burden (B): %.1f\n", r.BudgetBurdenScore))
	sb.WriteString(fmt.Sprintf("- Duplicate/maintenance (D): %.1f\n", r.DuplicateCost))
	sb.WriteString("\n### Comments\n\n")
	for _, c := range r.Comments {
		sb.WriteString("- " + c + "\n")
	}
}
