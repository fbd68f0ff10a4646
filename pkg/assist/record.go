package assist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mchmarny/buycheck/pkg/data"
	"github.com/mchmarny/buycheck/pkg/score"
)

// RecordTool handles the record_purchase MCP tool: evaluate, then persist.
type RecordTool struct {
	db       *sql.DB
	onChange func(context.Context)
}

// NewRecordTool creates a RecordTool. onChange, when set, runs after every
// successful save so callers can drop cached statistics.
func NewRecordTool(db *sql.DB, onChange func(context.Context)) *RecordTool {
	return &RecordTool{db: db, onChange: onChange}
}

func (t *RecordTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Score an intended purchase and save the decision to the local history. " +
				"Returns the stored decision id together with the verdict.",
		),
		mcp.WithString("item_name",
			mcp.Required(),
			mcp.Description("Name of the item being considered"),
		),
	}
	return mcp.NewTool("record_purchase", append(opts, answerOptions()...)...)
}

func (t *RecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := data.ValidateItemName(req.GetString("item_name", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, err := answersFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := score.Evaluate(a)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := data.SaveDecision(ctx, t.db, name, a, r)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save decision: %v", err)), nil
	}
	if t.onChange != nil {
		t.onChange(ctx)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Decision #%d: %s\n\n", d.ID, d.ItemName))
	formatResult(&sb, r)
	if r.Conclusion == score.ConclusionDelay {
		sb.WriteString(fmt.Sprintf("\nReconsider after %s.\n", d.DueAt().Format("2006-01-02 15:04 MST")))
	}
	return mcp.NewToolResultText(sb.String()), nil
}
