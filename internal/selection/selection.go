// Package selection models the category filter a user builds by clicking
// categories: everything selected, exactly one selected, or nothing.
package selection

import (
	"strings"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/pipeline"
)

// Mode is the observable state of a Selection.
type Mode int

// Selection modes.
const (
	None Mode = iota
	One
	All
)

func (m Mode) String() string {
	switch m {
	case All:
		return "all"
	case One:
		return "one"
	case None:
		return "none"
	}
	return "unknown"
}

// Selection is a category filter over a fixed category list. The zero value
// selects nothing; use New.
type Selection struct {
	categories model.Categories
	mode       Mode
	one        model.Category
}

// New returns a selection over cats with every category selected.
func New(cats model.Categories) Selection {
	return Selection{categories: cats, mode: All}
}

// Only returns a selection with just c selected. A category outside the
// list selects nothing.
func Only(cats model.Categories, c model.Category) Selection {
	if !cats.Contains(c) {
		return Selection{categories: cats, mode: None}
	}
	return Selection{categories: cats, mode: One, one: c}
}

// Mode reports the current state.
func (s Selection) Mode() Mode { return s.mode }

// Categories returns the full category list.
func (s Selection) Categories() model.Categories { return s.categories }

// Selected returns the selected category when Mode is One.
func (s Selection) Selected() (model.Category, bool) {
	return s.one, s.mode == One
}

// Has reports whether c is selected.
func (s Selection) Has(c model.Category) bool {
	switch s.mode {
	case All:
		return s.categories.Contains(c)
	case One:
		return c == s.one
	}
	return false
}

// Toggle applies a click on c: clicking the only selected category selects
// everything again, clicking any other category selects just that one.
func (s Selection) Toggle(c model.Category) Selection {
	if !s.categories.Contains(c) {
		return s
	}
	if s.mode == One && s.one == c {
		return New(s.categories)
	}
	return Only(s.categories, c)
}

// ToggleAll switches between everything and nothing selected. From One it
// selects everything.
func (s Selection) ToggleAll() Selection {
	if s.mode == All {
		return Selection{categories: s.categories, mode: None}
	}
	return New(s.categories)
}

// Set returns the selected categories as a filter set.
func (s Selection) Set() model.CategorySet {
	switch s.mode {
	case All:
		return s.categories.Set()
	case One:
		return model.NewCategorySet(s.one)
	}
	return model.CategorySet{}
}

// Criteria returns filter criteria for the selection. Selecting everything
// also matches categories outside the list, such as imported ones.
func (s Selection) Criteria() pipeline.Criteria {
	if s.mode == All {
		return pipeline.AllCategories()
	}
	return pipeline.Criteria{Categories: s.Set()}
}

// CriteriaFromNames builds filter criteria from category names given on a
// command line or query string. Names match cats ignoring case; others are
// kept as given. No names matches every category.
func CriteriaFromNames(cats model.Categories, names []string) pipeline.Criteria {
	picked := model.ParseCategories(ResolveNames(cats, names))
	if len(picked) == 0 {
		return pipeline.AllCategories()
	}
	return pipeline.Criteria{Categories: picked.Set()}
}

// ResolveNames maps each name onto the category in cats it equals ignoring
// case. Unmatched names are trimmed and passed through.
func ResolveNames(cats model.Categories, names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		for _, c := range cats {
			if strings.EqualFold(string(c), n) {
				n = string(c)
				break
			}
		}
		out = append(out, n)
	}
	return out
}
