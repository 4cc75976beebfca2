package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/llm"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
)

const synthesizerSystemMessage = "You are a data analyst answering questions " +
	"about e-commerce metrics from query results."

// AnswerSynthesizer narrates a result set in prose.
type AnswerSynthesizer interface {
	// Synthesize explains the rows returned for the question. An empty
	// result set is a valid, expected case to explain, never an error; the
	// only failure mode is the completion capability itself erroring.
	Synthesize(ctx context.Context, question, sqlQuery string, rows *models.ResultSet) (string, error)
}

type answerSynthesizer struct {
	client llm.CompletionClient
	logger *zap.Logger
}

// NewAnswerSynthesizer creates a synthesizer over the completion capability.
func NewAnswerSynthesizer(client llm.CompletionClient, logger *zap.Logger) AnswerSynthesizer {
	return &answerSynthesizer{
		client: client,
		logger: logger.Named("synthesizer"),
	}
}

var _ AnswerSynthesizer = (*answerSynthesizer)(nil)

func (s *answerSynthesizer) Synthesize(ctx context.Context, question, sqlQuery string, rows *models.ResultSet) (string, error) {
	data, err := rows.RecordsJSON()
	if err != nil {
		// Row values are plain scalars out of the store; this should not
		// happen, but a serialization failure is a generation failure from
		// the caller's point of view.
		return "", &llm.GenerationError{Message: "serialize result rows", Cause: err}
	}

	answer, err := s.client.Complete(ctx, buildSynthesisPrompt(question, sqlQuery, data), synthesizerSystemMessage)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(answer), nil
}

// buildSynthesisPrompt asks for four things: a direct numeric answer, a
// business interpretation, data limitations, and follow-up questions. The
// structure is a contract on the prompt only; the returned text is opaque
// prose and is not parsed.
func buildSynthesisPrompt(question, sqlQuery, data string) string {
	var b strings.Builder
	b.WriteString("Answer this question based on the query results:\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "SQL Used: %s\n", sqlQuery)
	fmt.Fprintf(&b, "Data: %s\n\n", data)
	b.WriteString("Provide:\n")
	b.WriteString("1. A clear answer with key numbers\n")
	b.WriteString("2. Business interpretation\n")
	b.WriteString("3. Any data limitations\n")
	b.WriteString("4. Suggested follow-up questions\n\n")
	b.WriteString("If no results, explain why and suggest alternatives.\n")
	return b.String()
}
