package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/seanankenbruck/sql-copilot/internal/llm"
	"github.com/seanankenbruck/sql-copilot/internal/observability"
	"github.com/seanankenbruck/sql-copilot/internal/schema"
)

// Translator converts normalized natural language into a SQL string via
// one model round trip
type Translator struct {
	client  llm.Client
	catalog *schema.Catalog
	dialect string
	logger  *observability.Logger
}

// NewTranslator creates a translator bound to a catalog and SQL dialect
func NewTranslator(client llm.Client, catalog *schema.Catalog, dialect string) *Translator {
	return &Translator{
		client:  client,
		catalog: catalog,
		dialect: dialect,
		logger:  observability.NewLogger("translator"),
	}
}

// Translate produces a SQL string for the given natural-language text.
// The schema description is included in the prompt only when execution is
// enabled; conversion-only mode translates without schema context.
func (t *Translator) Translate(ctx context.Context, text string, executionEnabled bool) (string, error) {
	prompt := t.buildPrompt(text, executionEnabled)

	t.logger.Debug(ctx, "Requesting SQL translation", map[string]interface{}{
		"query":           text,
		"schema_included": executionEnabled,
	})

	sqlText, err := ask(ctx, t.client, prompt)
	if err != nil {
		return "", err
	}

	t.logger.Debug(ctx, "Translated query", map[string]interface{}{
		"sql": sqlText,
	})
	return sqlText, nil
}

// buildPrompt constructs the translation prompt
func (t *Translator) buildPrompt(text string, executionEnabled bool) string {
	var sb strings.Builder

	if executionEnabled {
		sb.WriteString(t.catalog.Describe())
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("Convert the following natural language query into SQL for %s:\n", t.dialect))
	sb.WriteString(text)
	sb.WriteString("\nReturn only the SQL statement, without explanations or code fences.\nSQL:")

	return sb.String()
}
