// Package filter derives the visible subset of an entity list.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
)

// Criteria is the operator's current search input. Zero values match everything.
type Criteria struct {
	// Search is matched case-insensitively as a substring of the name.
	Search string
	// Category must equal the record's category field (a user's role) when set.
	Category string
	// Pattern is a glob matched against the whole name when set, e.g. "Read*".
	Pattern string
}

// Empty reports whether the criteria match everything.
func (c Criteria) Empty() bool {
	return c.Search == "" && c.Category == "" && c.Pattern == ""
}

// Record is anything with a name and an optional category.
type Record interface {
	Label() string
	Category() string
}

// Apply returns the records matching every predicate in c, preserving order. The
// input slice is never modified.
func Apply[T Record](items []T, c Criteria) []T {
	needle := fold(c.Search)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !strings.Contains(fold(item.Label()), needle) {
			continue
		}
		if c.Category != "" && item.Category() != c.Category {
			continue
		}
		if c.Pattern != "" {
			// Malformed patterns match nothing.
			ok, err := doublestar.Match(c.Pattern, item.Label())
			if err != nil || !ok {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// ValidPattern reports whether p is a well-formed glob.
func ValidPattern(p string) bool {
	return doublestar.ValidatePattern(p)
}

func fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}
