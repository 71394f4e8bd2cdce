package store

import (
	"strconv"
	"strings"
)

// PostFilter narrows a post listing. The zero value matches every post.
type PostFilter struct {
	// Search is an optional free-text term matched case-insensitively as
	// a substring of the post title. It is always treated as literal
	// text, never as a pattern.
	Search string
}

// Predicate renders the filter as a SQL condition and its arguments.
// Placeholders are numbered starting at argOffset+1. An empty condition
// means the filter matches everything.
func (f PostFilter) Predicate(argOffset int) (string, []any) {
	term := strings.TrimSpace(f.Search)
	if term == "" {
		return "", nil
	}
	return "title ILIKE $" + strconv.Itoa(argOffset+1), []any{"%" + escapeLike(term) + "%"}
}

// escapeLike neutralizes LIKE metacharacters so user input matches
// literally. Postgres uses backslash as the default escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
