package model

import "sort"

// Category is a spending category. The configured list is closed, but
// aggregation treats any value as an opaque grouping key.
type Category string

// DefaultCategories is the category list used when none is configured.
var DefaultCategories = Categories{
	"Food", "Transport", "Shopping", "Work",
	"Utilities", "Health", "Entertainment", "Travel",
}

var categoryIcons = map[Category]string{
	"Food":          "🍔",
	"Transport":     "🚗",
	"Shopping":      "🛍️",
	"Work":          "💼",
	"Utilities":     "💡",
	"Health":        "💊",
	"Entertainment": "🎬",
	"Travel":        "✈️",
}

// Label returns the category name prefixed with its icon, when it has one.
func (c Category) Label() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon + " " + string(c)
	}
	return string(c)
}

// Categories is an ordered list of distinct categories.
type Categories []Category

// ParseCategories converts names to categories, dropping blanks and duplicates.
func ParseCategories(names []string) Categories {
	out := make(Categories, 0, len(names))
	seen := make(map[Category]struct{}, len(names))
	for _, n := range names {
		c := Category(n)
		if n == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Contains reports whether c is in the list.
func (cs Categories) Contains(c Category) bool {
	return cs.Index(c) >= 0
}

// Index returns the position of c, or -1.
func (cs Categories) Index(c Category) int {
	for i, x := range cs {
		if x == c {
			return i
		}
	}
	return -1
}

// Set returns the list as a membership set.
func (cs Categories) Set() CategorySet {
	return NewCategorySet(cs...)
}

// Strings returns the category names.
func (cs Categories) Strings() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// CategorySet is an unordered set of categories. The nil set is empty.
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from the given categories.
func NewCategorySet(cats ...Category) CategorySet {
	s := make(CategorySet, len(cats))
	for _, c := range cats {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c is a member.
func (s CategorySet) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of members.
func (s CategorySet) Len() int { return len(s) }

// Sorted returns the members in name order.
func (s CategorySet) Sorted() Categories {
	out := make(Categories, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
