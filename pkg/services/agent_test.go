package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/llm"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/store"
)

// fakeExecutor returns a canned result or error and records the SQL it saw.
type fakeExecutor struct {
	result  *models.ResultSet
	err     error
	calls   int
	lastSQL string
}

func (f *fakeExecutor) Execute(ctx context.Context, sqlQuery string) (*models.ResultSet, error) {
	f.calls++
	f.lastSQL = sqlQuery
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// scriptedClient answers the generation call with sql and every later call
// with answer.
func scriptedClient(sql, answer string) *llm.MockCompletionClient {
	mock := llm.NewMockCompletionClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string) (string, error) {
		if strings.Contains(system, "SQL expert") {
			return sql, nil
		}
		return answer, nil
	}
	return mock
}

func newTestAgent(client llm.CompletionClient, executor QueryExecutor) Agent {
	schema := models.DefaultSchema()
	logger := zap.NewNop()
	return NewAgent(
		NewSQLGenerator(client, schema, logger),
		executor,
		NewAnswerSynthesizer(client, logger),
		NewVisualizer(logger),
		schema,
		logger,
	)
}

func TestAsk_SuccessWithVisualization(t *testing.T) {
	executor := &fakeExecutor{result: &models.ResultSet{
		Columns: []string{"date", "total_sales"},
		Rows: []map[string]any{
			{"date": "2024-01-01", "total_sales": 100.5},
			{"date": "2024-01-02", "total_sales": 200.25},
		},
	}}
	client := scriptedClient(
		"SELECT date, total_sales FROM sales_metrics WHERE item_id = 123",
		"Item 123 sold 300.75 across two days.",
	)

	resp := newTestAgent(client, executor).Ask(context.Background(), "Show me total sales for item 123")

	require.True(t, resp.Success)
	assert.Equal(t, "SELECT date, total_sales FROM sales_metrics WHERE item_id = 123", resp.SQL)
	assert.Equal(t, "SELECT date, total_sales FROM sales_metrics WHERE item_id = 123", executor.lastSQL)
	assert.Equal(t, "Item 123 sold 300.75 across two days.", resp.Answer)
	assert.Len(t, resp.Data, 2)
	assert.NotNil(t, resp.Visualization, "date+total_sales shape renders a chart")
	assert.Empty(t, resp.Error)
}

func TestAsk_SuccessWithoutVisualization(t *testing.T) {
	executor := &fakeExecutor{result: &models.ResultSet{
		Columns: []string{"clicks"},
		Rows:    []map[string]any{{"clicks": int64(42)}},
	}}
	client := scriptedClient("SELECT clicks FROM ad_metrics", "42 clicks.")

	resp := newTestAgent(client, executor).Ask(context.Background(), "How many clicks?")

	require.True(t, resp.Success)
	assert.Nil(t, resp.Visualization)
}

func TestAsk_EmptyResultSetIsSuccess(t *testing.T) {
	executor := &fakeExecutor{result: &models.ResultSet{
		Columns: []string{"total_sales"},
		Rows:    []map[string]any{},
	}}
	client := scriptedClient(
		"SELECT total_sales FROM sales_metrics WHERE item_id = 999",
		"No sales recorded for item 999.",
	)

	resp := newTestAgent(client, executor).Ask(context.Background(), "Sales for item 999?")

	require.True(t, resp.Success, "empty result is a success, not a failure")
	assert.NotEmpty(t, resp.Answer)
	assert.Nil(t, resp.Visualization)
}

func TestAsk_MutatingOutputNeverReachesExecutor(t *testing.T) {
	executor := &fakeExecutor{}
	client := scriptedClient("DELETE FROM sales_metrics", "unused")

	resp := newTestAgent(client, executor).Ask(context.Background(), "Delete all sales records")

	require.False(t, resp.Success)
	assert.Equal(t, 0, executor.calls, "execution must be short-circuited")
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Suggestion)
}

func TestAsk_StackedDeleteAfterSelectNeverReachesExecutor(t *testing.T) {
	executor := &fakeExecutor{}
	client := scriptedClient("SELECT 1; delete FROM sales_metrics", "unused")

	resp := newTestAgent(client, executor).Ask(context.Background(), "Delete all sales records")

	require.False(t, resp.Success)
	assert.Equal(t, 0, executor.calls)
}

func TestAsk_UnknownTableMapsToTableSuggestion(t *testing.T) {
	executor := &fakeExecutor{err: &store.ExecutionError{
		Message: "no such table: shipments",
		SQL:     "SELECT x FROM shipments",
	}}
	client := scriptedClient("SELECT x FROM shipments", "unused")

	resp := newTestAgent(client, executor).Ask(context.Background(), "Show shipments")

	require.False(t, resp.Success)
	assert.Contains(t, resp.Suggestion, "sales_metrics")
	assert.Contains(t, resp.Suggestion, "ad_metrics")
	assert.Contains(t, resp.Suggestion, "product_eligibility")
	assert.Equal(t, "SELECT x FROM shipments", resp.SQL,
		"failure after generation still reports the SQL that was attempted")
}

func TestAsk_UnknownColumnMapsToColumnSuggestion(t *testing.T) {
	executor := &fakeExecutor{err: &store.ExecutionError{
		Message: "no such column: revenue",
		SQL:     "SELECT revenue FROM sales_metrics",
	}}
	client := scriptedClient("SELECT revenue FROM sales_metrics", "unused")

	resp := newTestAgent(client, executor).Ask(context.Background(), "Show revenue")

	require.False(t, resp.Success)
	assert.Contains(t, resp.Suggestion, "total_sales")
	assert.Contains(t, resp.Suggestion, "ad_spend")
}

func TestAsk_NonSelectOutputMapsToSelectSuggestion(t *testing.T) {
	executor := &fakeExecutor{}
	client := scriptedClient("here is your answer", "unused")

	resp := newTestAgent(client, executor).Ask(context.Background(), "hello")

	require.False(t, resp.Success)
	assert.Contains(t, resp.Suggestion, "Show me sales for product X")
}

func TestAsk_GenerationTransportFailure(t *testing.T) {
	executor := &fakeExecutor{}
	mock := llm.NewMockCompletionClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string) (string, error) {
		return "", &llm.GenerationError{Message: "endpoint unreachable"}
	}

	resp := newTestAgent(mock, executor).Ask(context.Background(), "anything")

	require.False(t, resp.Success)
	assert.Empty(t, resp.SQL, "no SQL was generated before the failure")
	assert.Equal(t, "Try being more specific about what data you need", resp.Suggestion)
}

func TestAsk_SynthesisFailureStillCarriesSQL(t *testing.T) {
	executor := &fakeExecutor{result: &models.ResultSet{
		Columns: []string{"clicks"},
		Rows:    []map[string]any{{"clicks": int64(1)}},
	}}
	mock := llm.NewMockCompletionClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string) (string, error) {
		if strings.Contains(system, "SQL expert") {
			return "SELECT clicks FROM ad_metrics", nil
		}
		return "", &llm.GenerationError{Message: "request timed out"}
	}

	resp := newTestAgent(mock, executor).Ask(context.Background(), "clicks?")

	require.False(t, resp.Success)
	assert.Equal(t, "SELECT clicks FROM ad_metrics", resp.SQL)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	executor := &fakeExecutor{}
	client := llm.NewMockCompletionClient()

	resp := newTestAgent(client, executor).Ask(context.Background(), "   ")

	require.False(t, resp.Success)
	assert.Equal(t, 0, client.CompleteCalls)
	assert.Equal(t, 0, executor.calls)
	assert.NotEmpty(t, resp.Suggestion)
}
