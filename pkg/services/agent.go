package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/apperrors"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/logging"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
)

// QueryExecutor runs validated SQL against the warehouse.
type QueryExecutor interface {
	Execute(ctx context.Context, sqlQuery string) (*models.ResultSet, error)
}

// Agent orchestrates one question through generation, execution, synthesis,
// and visualization.
type Agent interface {
	// Ask always returns a response: a Success with the answer, rows, SQL,
	// and optional chart, or a Failure with a human-readable error and a
	// best-effort suggestion. It never returns an error.
	Ask(ctx context.Context, question string) *models.AgentResponse
}

// runState tracks an in-flight question through the pipeline. The first
// failure at any stage short-circuits the remaining stages.
type runState int

const (
	stateReceived runState = iota
	stateSQLGenerated
	stateExecuted
	stateAnswered
	stateVisualized
	stateDone
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateSQLGenerated:
		return "sql_generated"
	case stateExecuted:
		return "executed"
	case stateAnswered:
		return "answered"
	case stateVisualized:
		return "visualized"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type agent struct {
	generator   SQLGenerator
	executor    QueryExecutor
	synthesizer AnswerSynthesizer
	visualizer  Visualizer
	schema      models.Schema
	logger      *zap.Logger
}

// NewAgent wires the pipeline components together.
func NewAgent(
	generator SQLGenerator,
	executor QueryExecutor,
	synthesizer AnswerSynthesizer,
	visualizer Visualizer,
	schema models.Schema,
	logger *zap.Logger,
) Agent {
	return &agent{
		generator:   generator,
		executor:    executor,
		synthesizer: synthesizer,
		visualizer:  visualizer,
		schema:      schema,
		logger:      logger.Named("agent"),
	}
}

var _ Agent = (*agent)(nil)

// run is the per-question state. GeneratedSQL is set only after generation
// succeeds, which is what decides whether a failure response carries the SQL.
type run struct {
	id           string
	question     string
	state        runState
	generatedSQL string
}

func (a *agent) Ask(ctx context.Context, question string) *models.AgentResponse {
	r := &run{
		id:       uuid.NewString(),
		question: question,
		state:    stateReceived,
	}
	logger := a.logger.With(zap.String("request_id", r.id))

	if strings.TrimSpace(question) == "" {
		return a.fail(logger, r, apperrors.ErrEmptyQuestion)
	}

	logger.Info("question received",
		zap.String("question", logging.TruncateString(question, 200)))

	sqlQuery, err := a.generator.Generate(ctx, question)
	if err != nil {
		return a.fail(logger, r, err)
	}
	r.generatedSQL = sqlQuery
	a.advance(logger, r, stateSQLGenerated)
	logger.Debug("generated SQL", zap.String("sql", logging.SanitizeQuery(sqlQuery)))

	rows, err := a.executor.Execute(ctx, sqlQuery)
	if err != nil {
		return a.fail(logger, r, err)
	}
	a.advance(logger, r, stateExecuted)

	// Synthesis and visualization are independent of each other; run them
	// concurrently over the same result set.
	var (
		answer        string
		visualization *string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var synthErr error
		answer, synthErr = a.synthesizer.Synthesize(gctx, question, sqlQuery, rows)
		return synthErr
	})
	g.Go(func() error {
		visualization = a.visualizer.Render(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return a.fail(logger, r, err)
	}
	a.advance(logger, r, stateAnswered)
	a.advance(logger, r, stateVisualized)

	a.advance(logger, r, stateDone)
	logger.Info("question answered",
		zap.Int("rows", len(rows.Rows)),
		zap.Bool("visualization", visualization != nil))

	return &models.AgentResponse{
		Success:       true,
		Answer:        answer,
		Data:          rows.Rows,
		Visualization: visualization,
		SQL:           sqlQuery,
	}
}

func (a *agent) advance(logger *zap.Logger, r *run, next runState) {
	logger.Debug("state transition",
		zap.Stringer("from", r.state),
		zap.Stringer("to", next))
	r.state = next
}

// fail moves the run to the terminal failed state and maps the error onto a
// structured response. The generated SQL is included whenever generation
// succeeded before the failure.
func (a *agent) fail(logger *zap.Logger, r *run, err error) *models.AgentResponse {
	a.advance(logger, r, stateFailed)
	logger.Warn("question failed",
		zap.String("question", logging.TruncateString(r.question, 200)),
		zap.Error(err))

	return &models.AgentResponse{
		Success:    false,
		Error:      err.Error(),
		Suggestion: a.suggestionFor(err),
		SQL:        r.generatedSQL,
	}
}

// suggestionFor maps a failure's text onto one of four fixed suggestion
// templates by case-insensitive substring match. Best-effort UX: anything
// unmatched gets the generic suggestion, never an opaque fault.
func (a *agent) suggestionFor(err error) string {
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "no such table"):
		return fmt.Sprintf("Try rephrasing to use the %s tables",
			strings.Join(a.schema.TableNames(), ", "))
	case strings.Contains(message, "no such column"):
		return fmt.Sprintf("Available columns: %s",
			strings.Join(a.schema.ColumnNames(), ", "))
	case strings.Contains(message, "select"):
		return "Ask about data queries like 'Show me sales for product X' or 'Compare ad performance'"
	default:
		return "Try being more specific about what data you need"
	}
}
