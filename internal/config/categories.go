package config

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/sravya/xtrack/internal/model"
)

// UnknownCategoryError is returned when a name matches no configured
// category. Suggestion is the closest match, if any is close enough.
type UnknownCategoryError struct {
	Name       string
	Suggestion model.Category
}

func (e *UnknownCategoryError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown category %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown category %q", e.Name)
}

// ResolveCategory maps user input to a configured category, ignoring case.
func ResolveCategory(cats model.Categories, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	for _, c := range cats {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", &UnknownCategoryError{Name: name, Suggestion: closestCategory(cats, name)}
}

// closestCategory returns the category within edit distance 2 of name, or
// within a third of its length for longer names.
func closestCategory(cats model.Categories, name string) model.Category {
	lower := strings.ToLower(name)
	maxDist := 2
	if l := len(lower) / 3; l > maxDist {
		maxDist = l
	}

	var best model.Category
	bestDist := maxDist + 1
	for _, c := range cats {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(string(c)))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
