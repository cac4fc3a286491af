package executor

import (
	"strings"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
)

// Guard decides whether a statement may run under read-only mode. It is a
// named policy so a stricter tokenizing guard can replace the keyword scan
// without touching the orchestrator.
type Guard interface {
	// Check returns a DestructiveOperationError when the statement must
	// not run read-only
	Check(sqlText string) error
}

// destructiveKeywords are matched as substrings, not tokens. A column
// named update_time trips the guard too; that is the accepted policy.
var destructiveKeywords = []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER"}

// KeywordGuard is the case-insensitive substring guard
type KeywordGuard struct {
	keywords []string
}

// NewKeywordGuard creates a guard over the standard destructive keywords
func NewKeywordGuard() *KeywordGuard {
	return &KeywordGuard{keywords: destructiveKeywords}
}

// Check scans the statement for destructive keywords
func (g *KeywordGuard) Check(sqlText string) error {
	upper := strings.ToUpper(sqlText)
	for _, keyword := range g.keywords {
		if strings.Contains(upper, keyword) {
			return errors.NewDestructiveOperationError(keyword)
		}
	}
	return nil
}
