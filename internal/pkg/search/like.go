// internal/pkg/search/like.go
package search

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains builds a lowercase LIKE pattern matching term as a plain
// substring. Use it with ESCAPE '\'.
func Contains(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
