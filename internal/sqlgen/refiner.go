package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/seanankenbruck/sql-copilot/internal/llm"
	"github.com/seanankenbruck/sql-copilot/internal/observability"
	"github.com/seanankenbruck/sql-copilot/internal/schema"
)

// Refiner revises a prior SQL string from conversational feedback, using
// the same ask-and-clean round trip as translation
type Refiner struct {
	client  llm.Client
	catalog *schema.Catalog
	dialect string
	logger  *observability.Logger
}

// NewRefiner creates a refiner bound to a catalog and SQL dialect
func NewRefiner(client llm.Client, catalog *schema.Catalog, dialect string) *Refiner {
	return &Refiner{
		client:  client,
		catalog: catalog,
		dialect: dialect,
		logger:  observability.NewLogger("refiner"),
	}
}

// Refine produces a revised SQL string from the prior SQL plus feedback.
// Schema context follows the same execution-enabled rule as translation.
func (r *Refiner) Refine(ctx context.Context, priorSQL, feedback string, executionEnabled bool) (string, error) {
	prompt := r.buildPrompt(priorSQL, feedback, executionEnabled)

	r.logger.Debug(ctx, "Requesting SQL refinement", map[string]interface{}{
		"prior_sql": priorSQL,
		"feedback":  feedback,
	})

	refined, err := ask(ctx, r.client, prompt)
	if err != nil {
		return "", err
	}

	r.logger.Debug(ctx, "Refined query", map[string]interface{}{
		"sql": refined,
	})
	return refined, nil
}

// buildPrompt constructs the refinement prompt
func (r *Refiner) buildPrompt(priorSQL, feedback string, executionEnabled bool) string {
	var sb strings.Builder

	sb.WriteString("Never include explanation, just give me the result. The current SQL query is:\n")
	sb.WriteString(priorSQL)
	sb.WriteString("\n\n")

	if executionEnabled {
		sb.WriteString("and the schema is:\n")
		sb.WriteString(r.catalog.Describe())
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("Based on the following feedback, refine the SQL query for %s:\n", r.dialect))
	sb.WriteString(fmt.Sprintf("Feedback: %s\n\nRefined SQL:", feedback))

	return sb.String()
}
