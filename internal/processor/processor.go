// Package processor orchestrates the query lifecycle: load history,
// normalize terms, translate, validate, execute or simulate, persist.
package processor

import (
	"context"
	"strings"
	"time"

	"github.com/seanankenbruck/sql-copilot/internal/conversation"
	"github.com/seanankenbruck/sql-copilot/internal/errors"
	"github.com/seanankenbruck/sql-copilot/internal/executor"
	"github.com/seanankenbruck/sql-copilot/internal/observability"
	"github.com/seanankenbruck/sql-copilot/internal/schema"
	"github.com/seanankenbruck/sql-copilot/internal/sqlgen"
)

// translationErrorPrefix marks a terminal translation fault in the sql
// field of the response, mirroring what clients of the original API expect
const translationErrorPrefix = "Error:"

// QueryRequest is an incoming natural-language query
type QueryRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Query  string `json:"query" binding:"required"`
	// Execute and ReadOnly override the configured defaults per request
	Execute  *bool `json:"execute,omitempty"`
	ReadOnly *bool `json:"read_only,omitempty"`
}

// RefineRequest is conversational feedback on the previous query
type RefineRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Feedback string `json:"feedback" binding:"required"`
	Execute  *bool  `json:"execute,omitempty"`
	ReadOnly *bool  `json:"read_only,omitempty"`
}

// LifecycleResponse is the outcome of one lifecycle run. Exactly one of
// Result or Error is populated when SQL is non-nil; SQL is nil only when
// there was no prior turn to refine.
type LifecycleResponse struct {
	SQL     *string               `json:"sql"`
	Result  *executor.QueryResult `json:"result"`
	Schema  []string              `json:"schema"`
	Summary *ResultSummary        `json:"summary,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Defaults are the process-wide execution and safety defaults, overridable
// per request
type Defaults struct {
	ExecuteSQL bool
	ReadOnly   bool
	// AllowUnsafeOverride permits a request to turn read-only off
	AllowUnsafeOverride bool
}

// Processor composes the lifecycle collaborators. The catalog and the
// model client are process-lifetime; conversation history is loaded fresh
// per request.
type Processor struct {
	catalog       *schema.Catalog
	translator    *sqlgen.Translator
	validator     *sqlgen.Validator
	refiner       *sqlgen.Refiner
	executor      *executor.Executor
	simulator     *executor.Simulator
	store         conversation.Store
	defaults      Defaults
	logger        *observability.Logger
	healthChecker *observability.HealthChecker
}

// New creates a query processor
func New(
	catalog *schema.Catalog,
	translator *sqlgen.Translator,
	validator *sqlgen.Validator,
	refiner *sqlgen.Refiner,
	exec *executor.Executor,
	store conversation.Store,
	defaults Defaults,
) *Processor {
	return &Processor{
		catalog:    catalog,
		translator: translator,
		validator:  validator,
		refiner:    refiner,
		executor:   exec,
		simulator:  executor.NewSimulator(catalog),
		store:      store,
		defaults:   defaults,
		logger:     observability.NewLogger("query-processor"),
	}
}

// SetHealthChecker sets the health checker used by the HTTP layer
func (p *Processor) SetHealthChecker(healthChecker *observability.HealthChecker) {
	p.healthChecker = healthChecker
}

// ProcessQuery runs the full lifecycle for a fresh natural-language query
func (p *Processor) ProcessQuery(ctx context.Context, req *QueryRequest) *LifecycleResponse {
	start := time.Now()
	execute, readOnly := p.resolveModes(req.Execute, req.ReadOnly)

	ctx = observability.WithUserID(ctx, req.UserID)
	p.logger.Info(ctx, "Processing query", map[string]interface{}{
		"query":     req.Query,
		"execute":   execute,
		"read_only": readOnly,
	})

	var response *LifecycleResponse
	defer func() {
		duration := time.Since(start)
		success := response != nil && response.Error == ""
		observability.RecordQueryMetrics(duration, success, !execute, errorType(response))

		p.logger.Info(ctx, "Query processed", map[string]interface{}{
			"query":       req.Query,
			"duration_ms": duration.Milliseconds(),
			"success":     success,
		})
	}()

	history := p.store.Get(ctx, req.UserID)

	normalized := schema.NormalizeTerms(req.Query, p.catalog)
	if normalized != req.Query {
		p.logger.Debug(ctx, "Normalized query terms", map[string]interface{}{
			"original":   req.Query,
			"normalized": normalized,
		})
	}

	sqlText, err := p.translator.Translate(ctx, normalized, execute)
	if err != nil || strings.HasPrefix(sqlText, translationErrorPrefix) {
		response = translationFailure(sqlText, err)
		return response
	}

	response = p.completeTurn(ctx, req.UserID, req.Query, sqlText, execute, readOnly, history)
	return response
}

// RefineQuery revises the most recent SQL for a user from feedback
func (p *Processor) RefineQuery(ctx context.Context, req *RefineRequest) *LifecycleResponse {
	start := time.Now()
	execute, readOnly := p.resolveModes(req.Execute, req.ReadOnly)

	ctx = observability.WithUserID(ctx, req.UserID)
	p.logger.Info(ctx, "Refining query", map[string]interface{}{
		"feedback":  req.Feedback,
		"execute":   execute,
		"read_only": readOnly,
	})
	observability.GetGlobalMetrics().Inc(observability.MetricRefineTotal, nil)

	var response *LifecycleResponse
	defer func() {
		duration := time.Since(start)
		success := response != nil && response.Error == ""
		observability.RecordQueryMetrics(duration, success, !execute, errorType(response))

		p.logger.Info(ctx, "Refinement processed", map[string]interface{}{
			"feedback":    req.Feedback,
			"duration_ms": duration.Milliseconds(),
			"success":     success,
		})
	}()

	history := p.store.Get(ctx, req.UserID)
	if len(history) == 0 {
		noPrior := errors.NewNoPriorQueryError(req.UserID)
		p.logger.Warn(ctx, "No previous query to refine", map[string]interface{}{
			"user_id": req.UserID,
		})
		response = &LifecycleResponse{SQL: nil, Result: nil, Schema: []string{}, Error: noPrior.Message}
		return response
	}

	priorSQL := history[len(history)-1].Output
	refined, err := p.refiner.Refine(ctx, priorSQL, req.Feedback, execute)
	if err != nil || strings.HasPrefix(refined, translationErrorPrefix) {
		response = translationFailure(refined, err)
		return response
	}

	response = p.completeTurn(ctx, req.UserID, req.Feedback, refined, execute, readOnly, history)
	return response
}

// completeTurn validates, executes or simulates, and persists one turn.
// Validation rejections and execution faults short-circuit without
// persisting.
func (p *Processor) completeTurn(ctx context.Context, userID, input, sqlText string, execute, readOnly bool, history []conversation.Turn) *LifecycleResponse {
	verdict, err := p.validator.Validate(ctx, sqlText)
	if err != nil {
		// A validation call fault counts as a rejection
		verdict = sqlgen.Verdict{OK: false, Detail: "Validation error: " + err.Error()}
	}
	if !verdict.OK {
		return &LifecycleResponse{SQL: &sqlText, Result: nil, Schema: []string{}, Error: verdict.Detail}
	}

	var result *executor.QueryResult
	if execute {
		result, err = p.executor.Execute(ctx, sqlText, readOnly)
		if err != nil {
			return &LifecycleResponse{SQL: &sqlText, Result: nil, Schema: []string{}, Error: errorMessage(err)}
		}
	} else {
		result = p.simulator.Simulate(sqlText)
	}

	p.store.Set(ctx, userID, append(history, conversation.Turn{Input: input, Output: sqlText}))

	return &LifecycleResponse{
		SQL:     &sqlText,
		Result:  result,
		Schema:  result.Columns,
		Summary: Summarize(result),
	}
}

// resolveModes applies per-request overrides on top of the configured
// defaults. Turning read-only off per request is honored only when unsafe
// overrides are allowed.
func (p *Processor) resolveModes(executeOverride, readOnlyOverride *bool) (execute, readOnly bool) {
	execute = p.defaults.ExecuteSQL
	if executeOverride != nil {
		execute = *executeOverride
	}

	readOnly = p.defaults.ReadOnly
	if readOnlyOverride != nil {
		if *readOnlyOverride || p.defaults.AllowUnsafeOverride {
			readOnly = *readOnlyOverride
		}
	}
	return execute, readOnly
}

// translationFailure builds the terminal response for a translator fault.
// The error string occupies both the sql and error fields, as the original
// API surface did.
func translationFailure(sqlText string, err error) *LifecycleResponse {
	message := sqlText
	if err != nil {
		message = translationErrorPrefix + " " + err.Error()
	}
	return &LifecycleResponse{SQL: &message, Result: nil, Schema: []string{}, Error: message}
}

// errorMessage prefers the user-facing message of enhanced errors
func errorMessage(err error) string {
	if enhanced, ok := err.(*errors.EnhancedError); ok {
		return enhanced.Message
	}
	return err.Error()
}

// errorType labels a failed response for metrics
func errorType(response *LifecycleResponse) string {
	if response == nil || response.Error == "" {
		return ""
	}
	if response.SQL != nil && strings.HasPrefix(*response.SQL, translationErrorPrefix) {
		return "translation"
	}
	return "pipeline"
}
