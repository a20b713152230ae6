package search

import (
	"strings"
)

// LikeEscape is the escape character used in ContainsPattern output.
// Callers must pair the pattern with `ESCAPE '!'`.
const LikeEscape = '!'

// Normalize folds s to lower case with full Unicode rules. Stored values are
// folded in Go too, so matching never depends on the database's LOWER().
func Normalize(s string) string {
	return strings.ToLower(s)
}

// ContainsPattern builds a LIKE pattern matching any value that contains
// term, case-insensitively. Wildcards in term are matched literally.
// An empty term matches everything.
func ContainsPattern(term string) string {
	var b strings.Builder
	b.Grow(len(term) + 2)
	b.WriteByte('%')
	for _, r := range Normalize(term) {
		switch r {
		case '%', '_', LikeEscape:
			b.WriteRune(LikeEscape)
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}
