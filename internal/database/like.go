package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a user query into an ILIKE pattern that matches it as a
// literal substring. It must be used with ESCAPE '\'. An empty result means no
// filter.
func ContainsPattern(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}

	return "%" + likeEscaper.Replace(q) + "%"
}
