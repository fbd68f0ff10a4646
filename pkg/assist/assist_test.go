package assist

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mchmarny/buycheck/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, data.Init(path))
	db, err := data.GetDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func approveArgs() map[string]any {
	return map[string]any{
		"necessity":        float64(5),
		"has_similar":      false,
		"future_use":       float64(5),
		"budget_burden":    float64(0),
		"emotional_state":  "calm",
		"purchase_trigger": "genuine-need",
		"can_wait":         true,
		"maintenance_cost": "no",
		"price":            float64(50),
		"category":         "essential",
	}
}

func TestEvaluateTool_Definition(t *testing.T) {
	def := NewEvaluateTool().Definition()
	assert.Equal(t, "evaluate_purchase", def.Name)
	assert.Contains(t, def.InputSchema.Required, "emotional_state")
	assert.Contains(t, def.InputSchema.Required, "category")
	assert.Len(t, def.InputSchema.Properties, 10)
}

func TestEvaluateTool_Handle(t *testing.T) {
	res, err := NewEvaluateTool().Handle(context.Background(), makeReq(approveArgs()))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(res)
	assert.Contains(t, text, "approve (total 15.5)")
	assert.Contains(t, text, "Necessity (N): 17.5")
	assert.Contains(t, text, "judged to be a reasonable purchase")
}

func TestEvaluateTool_InvalidInput(t *testing.T) {
	args := approveArgs()
	args["emotional_state"] = "bored"

	res, err := NewEvaluateTool().Handle(context.Background(), makeReq(args))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "emotional_state")
}

func TestEvaluateTool_MissingSlider(t *testing.T) {
	args := approveArgs()
	delete(args, "necessity")

	res, err := NewEvaluateTool().Handle(context.Background(), makeReq(args))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "necessity")
}

func TestEvaluateTool_MissingBoolean(t *testing.T) {
	for _, key := range []string{"has_similar", "can_wait"} {
		t.Run(key, func(t *testing.T) {
			args := approveArgs()
			delete(args, key)

			res, err := NewEvaluateTool().Handle(context.Background(), makeReq(args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(res), key+" is required")
		})
	}
}

func TestRecordTool_MissingAnswerNotStored(t *testing.T) {
	db := newTestDB(t)
	args := approveArgs()
	args["item_name"] = "kayak"
	delete(args, "can_wait")

	res, err := NewRecordTool(db, nil).Handle(context.Background(), makeReq(args))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "can_wait")

	list, err := data.ListDecisions(context.Background(), db, data.ListCriteria{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEvaluateTool_FractionalSlider(t *testing.T) {
	args := approveArgs()
	args["future_use"] = 2.5

	res, err := NewEvaluateTool().Handle(context.Background(), makeReq(args))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "future_use")
}

func TestRecordTool_Handle(t *testing.T) {
	db := newTestDB(t)
	changed := 0
	tool := NewRecordTool(db, func(context.Context) { changed++ })

	args := approveArgs()
	args["item_name"] = "winter boots"

	res, err := tool.Handle(context.Background(), makeReq(args))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))
	assert.Contains(t, resultText(res), "winter boots")
	assert.Equal(t, 1, changed)

	list, err := data.ListDecisions(context.Background(), db, data.ListCriteria{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "winter boots", list[0].ItemName)
}

func TestRecordTool_RequiresName(t *testing.T) {
	db := newTestDB(t)
	res, err := NewRecordTool(db, nil).Handle(context.Background(), makeReq(approveArgs()))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "item name")
}

func TestRecordTool_InvalidNotStored(t *testing.T) {
	db := newTestDB(t)
	args := approveArgs()
	args["item_name"] = "mystery box"
	args["category"] = "luxury"

	res, err := NewRecordTool(db, nil).Handle(context.Background(), makeReq(args))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	list, err := data.ListDecisions(context.Background(), db, data.ListCriteria{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStatsTool_Handle(t *testing.T) {
	db := newTestDB(t)
	args := approveArgs()
	args["item_name"] = "notebook"
	_, err := NewRecordTool(db, nil).Handle(context.Background(), makeReq(args))
	require.NoError(t, err)

	res, err := NewStatsTool(db).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(res)
	assert.Contains(t, text, "**Decisions**: 1 (approved 1, delayed 0, rejected 0)")
	assert.Contains(t, text, "essential: 1 decisions")
}

func TestNew_RegistersTools(t *testing.T) {
	db := newTestDB(t)
	s := New(db, "test", nil)
	require.NotNil(t, s)

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, "evaluate_purchase")
	assert.Contains(t, out, "record_purchase")
	assert.Contains(t, out, "purchase_statistics")
}
