package assist

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/server"
)

const serverName = "buycheck"

// New creates the MCP server with all tools registered. onChange is passed
// to tools that write decisions.
func New(db *sql.DB, version string, onChange func(context.Context)) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	evaluateTool := NewEvaluateTool()
	s.AddTool(evaluateTool.Definition(), evaluateTool.Handle)

	recordTool := NewRecordTool(db, onChange)
	s.AddTool(recordTool.Definition(), recordTool.Handle)

	statsTool := NewStatsTool(db)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	return s
}

const instructions = `buycheck scores intended purchases.
Ask the user the eight checklist questions (necessity, similar item owned, future use,
budget burden, emotional state, purchase trigger, can wait, maintenance cost) plus
price and category, then call evaluate_purchase, or record_purchase to keep history.`
