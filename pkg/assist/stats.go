package assist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mchmarny/buycheck/pkg/data"
)

// StatsTool handles the purchase_statistics MCP tool.
type StatsTool struct {
	db  *sql.DB
	now func() time.Time
}

func NewStatsTool(db *sql.DB) *StatsTool {
	return &StatsTool{db: db, now: time.Now}
}

func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("purchase_statistics",
		mcp.WithDescription(
			"Summarize saved purchase decisions: verdict counts, total and saved amounts, "+
				"per-category and per-month breakdowns.",
		),
	)
}

func (t *StatsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := data.GetStatistics(ctx, t.db, t.now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get statistics: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Purchase Statistics\n\n")
	sb.WriteString(fmt.Sprintf("- **Decisions**: %d (approved %d, delayed %d, rejected %d)\n",
		s.Summary.TotalDecisions, s.Summary.Approved, s.Summary.Delayed, s.Summary.Rejected))
	sb.WriteString(fmt.Sprintf("- **Total amount**: %.2f\n", s.Summary.TotalAmount))
	sb.WriteString(fmt.Sprintf("- **Saved amount**: %.2f (%.1f%%)\n", s.Summary.SavedAmount, s.Summary.SavedRate))
	sb.WriteString(fmt.Sprintf("- **Last 7 / 30 days**: %d / %d\n", s.RecentTrends.Last7Days, s.RecentTrends.Last30Days))

	if len(s.ByCategory) > 0 {
		sb.WriteString("\n### By category\n\n")
		for _, c := range s.ByCategory {
			sb.WriteString(fmt.Sprintf("- %s: %d decisions, %.2f total, avg score %.1f\n", c.Category, c.Count, c.TotalAmount, c.AvgScore))
		}
	}

	if len(s.ByMonth) > 0 {
		sb.WriteString("\n### By month\n\n")
		for _, m := range s.ByMonth {
			sb.WriteString(fmt.Sprintf("- %s: %d decisions, saved %.2f\n", m.Month, m.Count, m.SavedAmount))
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
