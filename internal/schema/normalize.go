package schema

import (
	"regexp"
)

// NormalizeTerms rewrites pluralized table names in free text to their
// canonical catalog spelling. Matching is whole-word and case-insensitive
// so substrings inside longer words are left alone. The catalog is not
// mutated; tables are visited in sorted order so rewrites are
// deterministic.
func NormalizeTerms(text string, catalog *Catalog) string {
	tables := catalog.Tables()
	for _, table := range tables {
		plural := table + "s"
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(plural) + `\b`)
		if !pattern.MatchString(text) {
			continue
		}
		corrected := catalog.Correct(plural, tables)
		text = pattern.ReplaceAllString(text, corrected)
	}
	return text
}
