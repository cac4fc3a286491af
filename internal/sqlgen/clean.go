package sqlgen

import (
	"strings"
)

// dialect labels the model tends to prepend, longest first so "sqlite"
// wins over "sql"
var dialectLabels = []string{"sqlite", "sql"}

// Clean normalizes a raw model reply into a bare SQL string: whitespace
// trimmed, newlines collapsed to spaces, markdown code fences stripped, and
// leading dialect labels removed until none remain. Cleaning is idempotent;
// applying it twice yields the same result as once.
func Clean(reply string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(reply, "\n", " "))

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(cleaned[3:])
		if strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimSpace(cleaned[:len(cleaned)-3])
		}
	}

	// Label stripping runs to a fixed point: a doubled label would
	// otherwise survive one pass and break idempotence
	for {
		stripped := stripDialectLabel(cleaned)
		if stripped == cleaned {
			return cleaned
		}
		cleaned = stripped
	}
}

// stripDialectLabel removes one leading dialect label. The label must stand
// alone: the whole reply, or followed by a space.
func stripDialectLabel(s string) string {
	for _, label := range dialectLabels {
		if len(s) < len(label) || !strings.EqualFold(s[:len(label)], label) {
			continue
		}
		rest := s[len(label):]
		if rest == "" || rest[0] == ' ' {
			return strings.TrimSpace(rest)
		}
	}
	return s
}
