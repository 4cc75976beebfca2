package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
)

// stubAgent returns a canned response and records the question it received.
type stubAgent struct {
	resp         *models.AgentResponse
	lastQuestion string
	calls        int
}

func (s *stubAgent) Ask(ctx context.Context, question string) *models.AgentResponse {
	s.calls++
	s.lastQuestion = question
	return s.resp
}

func newAskRouter(agent *stubAgent) http.Handler {
	r := chi.NewRouter()
	NewAskHandler(agent, zap.NewNop()).RegisterRoutes(r)
	return r
}

func postAsk(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAsk_Success(t *testing.T) {
	viz := "aGVsbG8="
	agent := &stubAgent{resp: &models.AgentResponse{
		Success:       true,
		Answer:        "Total sales were 300.75.",
		Data:          []map[string]any{{"total": 300.75}},
		Visualization: &viz,
		SQL:           "SELECT SUM(total_sales) AS total FROM sales_metrics",
	}}

	rec := postAsk(t, newAskRouter(agent), `{"text": "What were total sales?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What were total sales?", agent.lastQuestion)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Total sales were 300.75.", body["answer"])
	assert.Equal(t, "aGVsbG8=", body["visualization"])
	assert.NotEmpty(t, body["sql"])
}

func TestAsk_SuccessWithoutVisualizationSerializesNull(t *testing.T) {
	agent := &stubAgent{resp: &models.AgentResponse{
		Success: true,
		Answer:  "42 clicks.",
		Data:    []map[string]any{{"clicks": float64(42)}},
		SQL:     "SELECT clicks FROM ad_metrics",
	}}

	rec := postAsk(t, newAskRouter(agent), `{"text": "clicks?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	v, present := body["visualization"]
	assert.True(t, present, "visualization key must be present")
	assert.Nil(t, v)
}

func TestAsk_SuccessEmptyRowsIncludesEmptyData(t *testing.T) {
	agent := &stubAgent{resp: &models.AgentResponse{
		Success: true,
		Answer:  "No sales were recorded for that item.",
		Data:    []map[string]any{},
		SQL:     "SELECT date, total_sales FROM sales_metrics WHERE item_id = 999",
	}}

	rec := postAsk(t, newAskRouter(agent), `{"text": "sales for item 999?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data, present := body["data"]
	require.True(t, present, "data key must be present on success")
	assert.Equal(t, []any{}, data)
}

func TestAsk_PipelineFailure(t *testing.T) {
	agent := &stubAgent{resp: &models.AgentResponse{
		Success:    false,
		Error:      "SQL execution failed: no such table: shipments (query: SELECT x FROM shipments)",
		Suggestion: "Try rephrasing to use the sales_metrics, ad_metrics, product_eligibility tables",
		SQL:        "SELECT x FROM shipments",
	}}

	rec := postAsk(t, newAskRouter(agent), `{"text": "Show shipments"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "no such table")
	assert.Contains(t, body["suggestion"], "sales_metrics")
	assert.Equal(t, "SELECT x FROM shipments", body["sql"])
}

func TestAsk_FailureWithoutSQLOmitsField(t *testing.T) {
	agent := &stubAgent{resp: &models.AgentResponse{
		Success:    false,
		Error:      "completion failed: endpoint unreachable",
		Suggestion: "Try being more specific about what data you need",
	}}

	rec := postAsk(t, newAskRouter(agent), `{"text": "anything"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	_, present := body["sql"]
	assert.False(t, present, "sql omitted when generation never succeeded")
}

func TestAsk_EmptyText(t *testing.T) {
	agent := &stubAgent{}

	rec := postAsk(t, newAskRouter(agent), `{"text": "  "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, agent.calls, "agent not invoked for empty question")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "question text is required", body["error"])
	assert.NotEmpty(t, body["suggestion"])
}

func TestAsk_MalformedJSON(t *testing.T) {
	agent := &stubAgent{}

	rec := postAsk(t, newAskRouter(agent), `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, agent.calls)
}
