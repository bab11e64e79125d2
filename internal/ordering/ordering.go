// Package ordering ranks already-scored candidates when composite scores
// tie, applying the deterministic four-rule tie-break cascade. It never
// scores, constrains, or mutates state.
package ordering

import (
	"sort"
	"strings"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StillNeeded returns, per tracked nutrient, the remaining gap between its
// carryover-adjusted daily target and what has been consumed so far today.
// Nutrients already met are omitted.
func StillNeeded(tracked map[string]float64, carryover map[string]float64, consumed map[string]float64, daysRemaining int) map[string]float64 {
	if len(tracked) == 0 {
		return nil
	}
	daysLeft := daysRemaining
	if daysLeft <= 0 {
		daysLeft = 1
	}
	out := map[string]float64{}
	for n, base := range tracked {
		if base <= 0 {
			continue
		}
		adj := mealplan.AdjustedDailyTarget(base, carryover[n], daysLeft)
		cur := 0.0
		if consumed != nil {
			cur = consumed[n]
		}
		if cur < adj {
			out[n] = adj - cur
		}
	}
	return out
}

// GapFillCount counts currently deficient nutrients that recipe supplies a
// non-zero amount of.
func GapFillCount(recipe mealplan.Recipe, gaps map[string]float64) int {
	if len(gaps) == 0 {
		return 0
	}
	count := 0
	for n := range gaps {
		if recipe.Nutrition.Micronutrients.Get(n) > 0 {
			count++
		}
	}
	return count
}

// DeficitReduction sums, across deficient nutrients, the recipe's
// contribution as a fraction of the remaining gap (capped at 1 each).
func DeficitReduction(recipe mealplan.Recipe, gaps map[string]float64) float64 {
	if len(gaps) == 0 {
		return 0
	}
	total := 0.0
	for n, gap := range gaps {
		if gap <= 0 {
			continue
		}
		amount := recipe.Nutrition.Micronutrients.Get(n)
		if amount <= 0 {
			continue
		}
		ratio := amount / gap
		if ratio > 1 {
			ratio = 1
		}
		total += ratio
	}
	return total
}

// LikedFoodsCount counts recipe ingredients matching the user's liked-foods
// list, case-insensitively.
func LikedFoodsCount(recipe mealplan.Recipe, likedFoods []string) int {
	if len(likedFoods) == 0 {
		return 0
	}
	liked := make(map[string]bool, len(likedFoods))
	for _, l := range likedFoods {
		liked[normalize(l)] = true
	}
	count := 0
	for _, ing := range recipe.Ingredients {
		if liked[normalize(ing.Name)] {
			count++
		}
	}
	return count
}

// ScoredCandidate pairs a recipe with its precomputed composite score.
type ScoredCandidate struct {
	Recipe       mealplan.Recipe
	VariantIndex int
	Score        float64
}

// OrderContext bundles the read-only state the tie-break rules consult.
type OrderContext struct {
	Tracked        map[string]float64
	Carryover      map[string]float64
	Consumed       map[string]float64
	DaysRemaining  int
	LikedFoods     []string
}

// OrderScoredCandidates sorts candidates by composite score descending,
// then by gap-fill count, deficit reduction, liked-foods count (all
// descending), then by recipe id ascending. The sort is stable so equal
// keys preserve input order, matching a deterministic reference sort.
func OrderScoredCandidates(candidates []ScoredCandidate, ctx OrderContext) []ScoredCandidate {
	gaps := StillNeeded(ctx.Tracked, ctx.Carryover, ctx.Consumed, ctx.DaysRemaining)

	type keyed struct {
		candidate ScoredCandidate
		gapFill   int
		deficit   float64
		liked     int
	}
	keys := make([]keyed, len(candidates))
	for i, c := range candidates {
		keys[i] = keyed{
			candidate: c,
			gapFill:   GapFillCount(c.Recipe, gaps),
			deficit:   DeficitReduction(c.Recipe, gaps),
			liked:     LikedFoodsCount(c.Recipe, ctx.LikedFoods),
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.candidate.Score != b.candidate.Score {
			return a.candidate.Score > b.candidate.Score
		}
		if a.gapFill != b.gapFill {
			return a.gapFill > b.gapFill
		}
		if a.deficit != b.deficit {
			return a.deficit > b.deficit
		}
		if a.liked != b.liked {
			return a.liked > b.liked
		}
		return a.candidate.Recipe.ID < b.candidate.Recipe.ID
	})

	out := make([]ScoredCandidate, len(keys))
	for i, k := range keys {
		out[i] = k.candidate
	}
	return out
}
