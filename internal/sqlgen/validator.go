package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/seanankenbruck/sql-copilot/internal/llm"
	"github.com/seanankenbruck/sql-copilot/internal/observability"
	"github.com/seanankenbruck/sql-copilot/internal/schema"
)

// Verdict is the outcome of a validation round trip. When OK is false,
// Detail carries the model's explanation verbatim.
type Verdict struct {
	OK     bool
	Detail string
}

// Validator asks the model whether a candidate SQL string is valid
// against the schema
type Validator struct {
	client  llm.Client
	catalog *schema.Catalog
	logger  *observability.Logger
}

// NewValidator creates a validator bound to a catalog
func NewValidator(client llm.Client, catalog *schema.Catalog) *Validator {
	return &Validator{
		client:  client,
		catalog: catalog,
		logger:  observability.NewLogger("validator"),
	}
}

// Validate checks sqlText against the schema. The model is instructed to
// reply exactly "yes" for valid SQL; any other reply is a rejection with
// the reply text as detail. A call fault is returned as an error and is
// treated by the caller as a rejection too.
func (v *Validator) Validate(ctx context.Context, sqlText string) (Verdict, error) {
	prompt := fmt.Sprintf(
		"%s\n\nGiven the SQL query:\n%s\n\nIs this query valid according to the above schema? "+
			"If valid, reply only with 'yes'. If invalid, provide a brief explanation and a prompt to help the user fix it.",
		v.catalog.Describe(), sqlText,
	)

	reply, err := v.client.Complete(ctx, prompt)
	if err != nil {
		return Verdict{}, err
	}

	normalized := strings.ToLower(strings.TrimSpace(reply))
	verdict := Verdict{
		OK:     normalized == "yes",
		Detail: strings.TrimSpace(reply),
	}

	if !verdict.OK {
		v.logger.Info(ctx, "Validation rejected SQL", map[string]interface{}{
			"sql":    sqlText,
			"detail": verdict.Detail,
		})
	}
	return verdict, nil
}
