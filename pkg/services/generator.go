// Package services implements the question-to-insight pipeline.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/llm"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
	sqlcheck "github.com/Sabare1/ecommerce-ai-agent/pkg/sql"
)

const generatorSystemMessage = "You are a SQL expert working with e-commerce data. " +
	"Generate ONLY a SELECT query. Return ONLY the SQL query, nothing else. " +
	"No markdown, no explanation."

// SQLGenerator turns a natural-language question into a validated SELECT
// statement.
type SQLGenerator interface {
	// Generate builds the generation prompt, invokes the completion
	// capability exactly once, and sanitizes the output. The returned SQL
	// has passed validation; the model's compliance with the prompt is
	// never trusted.
	Generate(ctx context.Context, question string) (string, error)
}

type sqlGenerator struct {
	client llm.CompletionClient
	schema models.Schema
	logger *zap.Logger
}

// NewSQLGenerator creates a generator over the fixed warehouse schema.
func NewSQLGenerator(client llm.CompletionClient, schema models.Schema, logger *zap.Logger) SQLGenerator {
	return &sqlGenerator{
		client: client,
		schema: schema,
		logger: logger.Named("sql-generator"),
	}
}

var _ SQLGenerator = (*sqlGenerator)(nil)

func (g *sqlGenerator) Generate(ctx context.Context, question string) (string, error) {
	prompt := g.buildPrompt(question)

	raw, err := g.client.Complete(ctx, prompt, generatorSystemMessage)
	if err != nil {
		return "", err
	}

	sqlQuery, err := sqlcheck.Sanitize(raw)
	if err != nil {
		g.logger.Warn("generated text failed validation",
			zap.String("question", question),
			zap.Error(err))
		return "", err
	}

	return sqlQuery, nil
}

// buildPrompt is deterministic: same question, same prompt. The sanitization
// rules are repeated as instructions, but validation stays authoritative.
func (g *sqlGenerator) buildPrompt(question string) string {
	var b strings.Builder
	b.WriteString("Database schema:\n")
	b.WriteString(g.schema.PromptDescription())
	b.WriteString("\nRules:\n")
	b.WriteString("1. Always use explicit column names (no *)\n")
	b.WriteString("2. Only query relevant tables\n")
	b.WriteString("3. Include WHERE clauses when appropriate\n")
	b.WriteString("4. Never modify data (only SELECT)\n")
	fmt.Fprintf(&b, "\nConvert this to SQL: %s\n", question)
	return b.String()
}
