package assist

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mchmarny/buycheck/pkg/score"
)

// EvaluateTool handles the evaluate_purchase MCP tool. It never persists.
type EvaluateTool struct{}

func NewEvaluateTool() *EvaluateTool {
	return &EvaluateTool{}
}

func (t *EvaluateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Score an intended purchase from the eight-question checklist and return " +
				"the sub-scores, total, verdict (approve, delay-48h, reject) and advisory comments. " +
				"Nothing is saved.",
		),
	}
	return mcp.NewTool("evaluate_purchase", append(opts, answerOptions()...)...)
}

func (t *EvaluateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := answersFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := score.Evaluate(a)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("## Purchase Evaluation\n\n")
	formatResult(&sb, r)
	return mcp.NewToolResultText(sb.String()), nil
}
