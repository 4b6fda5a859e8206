// Package query turns the category and location tables into listing queries.
package query

import (
	"strings"

	"github.com/Ruscigno/JobPulse/pkg/model"
)

// Expand returns the cross product of every category alias with every
// location, in category, alias, location order. A (alias, location) pair
// that repeats across categories is kept once, under the first category.
func Expand(categories []model.Category, locations []string) []model.QueryUnit {
	seen := make(map[string]struct{})
	var units []model.QueryUnit
	for _, cat := range categories {
		for _, alias := range cat.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			for _, loc := range locations {
				loc = strings.TrimSpace(loc)
				if loc == "" {
					continue
				}
				key := strings.ToLower(alias) + "\x00" + strings.ToLower(loc)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				units = append(units, model.QueryUnit{
					Alias:    alias,
					Category: cat.Name,
					Location: loc,
				})
			}
		}
	}
	return units
}
