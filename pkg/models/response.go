package models

// AskRequest is the transport-facing question payload.
type AskRequest struct {
	Text string `json:"text"`
	// Stream is accepted for forward compatibility; the answer is always
	// computed in full before the response is written.
	Stream bool `json:"stream,omitempty"`
}

// AgentResponse is the tagged outcome of one orchestration run.
//
// On success: Answer, Data, SQL are set and Visualization is non-nil only
// when a chart rule matched the result shape. Data is always serialized,
// as [] when the query returned no rows.
// On failure: Error and Suggestion are set, and SQL is included whenever
// generation succeeded before the failure.
type AgentResponse struct {
	Success       bool             `json:"success"`
	Answer        string           `json:"answer,omitempty"`
	Data          []map[string]any `json:"data"`
	Visualization *string          `json:"visualization"`
	SQL           string           `json:"sql,omitempty"`
	Error         string           `json:"error,omitempty"`
	Suggestion    string           `json:"suggestion,omitempty"`
}
