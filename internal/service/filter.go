package service

import (
	"strings"

	"github.com/forgo/manifestor/api/internal/model"
)

// Stateless querying over an in-memory dream collection. None of these
// functions reorder or mutate their input.

// Search keeps dreams whose title or category contains term, ignoring case.
// The term is matched as given, whitespace included. An empty term matches
// everything.
func Search(dreams []*model.Dream, term string) []*model.Dream {
	needle := strings.ToLower(term)
	if needle == "" {
		return cloneDreams(dreams)
	}

	out := make([]*model.Dream, 0, len(dreams))
	for _, dream := range dreams {
		if matchesTerm(dream, needle) {
			out = append(out, dream)
		}
	}
	return out
}

func matchesTerm(dream *model.Dream, needle string) bool {
	if dream == nil {
		return false
	}
	if strings.Contains(strings.ToLower(dream.Title), needle) {
		return true
	}
	category := dream.CategoryValue()
	return category != "" && strings.Contains(strings.ToLower(category), needle)
}

// FilterByType keeps dreams of the selected type. SelectAll is the identity.
func FilterByType(dreams []*model.Dream, selector model.TypeSelector) []*model.Dream {
	if selector == model.SelectAll || selector == "" {
		return cloneDreams(dreams)
	}

	out := make([]*model.Dream, 0, len(dreams))
	for _, dream := range dreams {
		if dream != nil && model.TypeSelector(dream.Type) == selector {
			out = append(out, dream)
		}
	}
	return out
}

// Query applies Search and FilterByType; a dream must satisfy both
func Query(dreams []*model.Dream, term string, selector model.TypeSelector) []*model.Dream {
	return FilterByType(Search(dreams, term), selector)
}

// DistinctCategories counts dreams per category in order of first
// appearance. Dreams without a category are left out.
func DistinctCategories(dreams []*model.Dream) []model.CategoryCount {
	index := make(map[string]int)
	out := make([]model.CategoryCount, 0)
	for _, dream := range dreams {
		if dream == nil {
			continue
		}
		category := dream.CategoryValue()
		if category == "" {
			continue
		}
		if i, ok := index[category]; ok {
			out[i].Count++
			continue
		}
		index[category] = len(out)
		out = append(out, model.CategoryCount{Category: category, Count: 1})
	}
	return out
}

func cloneDreams(dreams []*model.Dream) []*model.Dream {
	if dreams == nil {
		return nil
	}
	out := make([]*model.Dream, len(dreams))
	copy(out, dreams)
	return out
}
