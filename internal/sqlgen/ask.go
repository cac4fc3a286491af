// Package sqlgen turns natural language into SQL, validates candidate SQL
// against the schema, and refines prior SQL from feedback. All three paths
// share one ask-the-model-then-clean primitive so the cleaning semantics
// cannot drift between them.
package sqlgen

import (
	"context"

	"github.com/seanankenbruck/sql-copilot/internal/llm"
)

// ask performs one model round trip and cleans the reply
func ask(ctx context.Context, client llm.Client, prompt string) (string, error) {
	reply, err := client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return Clean(reply), nil
}
