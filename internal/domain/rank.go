package domain

import (
	"fmt"
	"sort"
)

// UnknownCategoryError reports a school whose category token is absent from
// the supplied priority list. Ranking fails for the whole run rather than
// silently dropping or misplacing the row.
type UnknownCategoryError struct {
	School   string
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("school %q has category %q not present in the priority list", e.School, e.Category)
}

// Rank orders schools by (priority rank ascending, distance ascending), with
// rows missing a distance after all measured rows of the same rank. The sort
// is stable: exact ties keep their input order. The input slice is not
// modified; priority gives category tokens from most to least preferred.
func Rank(schools []School, priority []string) ([]School, error) {
	rankOf := make(map[string]int, len(priority))
	for i, token := range priority {
		if _, dup := rankOf[token]; !dup {
			rankOf[token] = i
		}
	}

	ranked := make([]School, len(schools))
	copy(ranked, schools)

	for _, s := range ranked {
		if _, ok := rankOf[s.Category]; !ok {
			return nil, &UnknownCategoryError{School: s.Name, Category: s.Category}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if ra, rb := rankOf[a.Category], rankOf[b.Category]; ra != rb {
			return ra < rb
		}
		switch {
		case a.DistanceKm == nil:
			return false
		case b.DistanceKm == nil:
			return true
		default:
			return *a.DistanceKm < *b.DistanceKm
		}
	})

	return ranked, nil
}
