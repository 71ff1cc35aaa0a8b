// Package level maps cumulative points to level tiers via static thresholds.
package level

// Def is one tier of the level catalog.
type Def struct {
	Level          int
	Name           string
	PointsRequired int
}

// catalog is ordered by ascending threshold. Level 1 must sit at 0 points and
// thresholds must be strictly increasing.
var catalog = []Def{
	{Level: 1, Name: "Seedling", PointsRequired: 0},
	{Level: 2, Name: "Sprout", PointsRequired: 100},
	{Level: 3, Name: "Explorer", PointsRequired: 250},
	{Level: 4, Name: "Adventurer", PointsRequired: 500},
	{Level: 5, Name: "Trailblazer", PointsRequired: 1000},
	{Level: 6, Name: "Luminary", PointsRequired: 2000},
}

// Catalog returns a copy of the level catalog in ascending order.
func Catalog() []Def {
	return append([]Def(nil), catalog...)
}

// For returns the level tier for a cumulative point total. Thresholds are
// checked from highest to lowest so a total satisfying several resolves to
// the highest qualifying tier. Zero or negative points resolve to level 1.
func For(points int) int {
	for i := len(catalog) - 1; i >= 0; i-- {
		if catalog[i].PointsRequired <= points {
			return catalog[i].Level
		}
	}
	return 1
}

// Name returns the display name for a level tier, or the empty string when
// the tier is not in the catalog.
func Name(lvl int) string {
	for _, d := range catalog {
		if d.Level == lvl {
			return d.Name
		}
	}
	return ""
}
