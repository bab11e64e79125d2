// Package feasibility implements the forward-looking feasibility checks
// (FC-1 through FC-5) that prune a branch before it can dead-end many
// decisions later. Each check answers "can the remaining slots still reach a
// valid daily or weekly outcome from here", using precomputed achievable
// bounds rather than exhaustive lookahead search.
package feasibility

import (
	"sort"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

// DailyToleranceFraction is the +/-10% band macros must land within by the
// end of a day.
const DailyToleranceFraction = 0.10

// MacroBounds gives, for a fixed slot count M, the minimum and maximum sum
// of a macro achievable by choosing M distinct recipes from the pool.
type MacroBounds struct {
	CaloriesMin, CaloriesMax map[int]float64
	ProteinMin, ProteinMax   map[int]float64
	FatMin, FatMax           map[int]float64
	CarbsMin, CarbsMax       map[int]float64
}

func sortedByRecipe(pool []mealplan.Recipe, pick func(mealplan.Recipe) float64) []float64 {
	seen := make(map[string]bool, len(pool))
	values := make([]float64, 0, len(pool))
	for _, r := range pool {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		values = append(values, pick(r))
	}
	sort.Float64s(values)
	return values
}

func minMaxSums(values []float64, maxSlots int) (min, max map[int]float64) {
	min = map[int]float64{}
	max = map[int]float64{}
	n := len(values)
	full := 0.0
	for _, v := range values {
		full += v
	}
	for m := 1; m <= maxSlots; m++ {
		if m > n {
			min[m] = full
			max[m] = full
			continue
		}
		lowSum, highSum := 0.0, 0.0
		for i := 0; i < m; i++ {
			lowSum += values[i]
		}
		for i := n - m; i < n; i++ {
			highSum += values[i]
		}
		min[m] = lowSum
		max[m] = highSum
	}
	return min, max
}

// PrecomputeMacroBounds computes MacroBounds for slot counts 1..maxSlots.
func PrecomputeMacroBounds(pool []mealplan.Recipe, maxSlots int) MacroBounds {
	cal := sortedByRecipe(pool, func(r mealplan.Recipe) float64 { return r.Nutrition.Calories })
	pro := sortedByRecipe(pool, func(r mealplan.Recipe) float64 { return r.Nutrition.ProteinG })
	fat := sortedByRecipe(pool, func(r mealplan.Recipe) float64 { return r.Nutrition.FatG })
	carb := sortedByRecipe(pool, func(r mealplan.Recipe) float64 { return r.Nutrition.CarbsG })

	var b MacroBounds
	b.CaloriesMin, b.CaloriesMax = minMaxSums(cal, maxSlots)
	b.ProteinMin, b.ProteinMax = minMaxSums(pro, maxSlots)
	b.FatMin, b.FatMax = minMaxSums(fat, maxSlots)
	b.CarbsMin, b.CarbsMax = minMaxSums(carb, maxSlots)
	return b
}

// PrecomputeMaxDailyAchievable computes, for each micronutrient and each
// slot count 1..maxSlots, the maximum sum achievable from M distinct
// recipes (largest M values). It intentionally ignores same-day exclusion
// bookkeeping, which makes it a conservative (loose) upper bound.
func PrecomputeMaxDailyAchievable(pool []mealplan.Recipe, maxSlots int) map[string]map[int]float64 {
	out := make(map[string]map[int]float64, len(mealplan.NutrientFields))
	for _, f := range mealplan.NutrientFields {
		values := sortedByRecipe(pool, func(r mealplan.Recipe) float64 { return r.Nutrition.Micronutrients.Get(f) })
		n := len(values)
		perM := make(map[int]float64, maxSlots)
		for m := 1; m <= maxSlots; m++ {
			take := m
			if take > n {
				take = n
			}
			sum := 0.0
			for i := n - take; i < n; i++ {
				sum += values[i]
			}
			perM[m] = sum
		}
		out[f] = perM
	}
	return out
}

func boundsOverlapBand(remaining float64, k int, minSums, maxSums map[int]float64, target, tolerance float64) bool {
	lowerNeeded := remaining - tolerance*target
	upperNeeded := remaining + tolerance*target
	achievableMin := minSums[k]
	achievableMax := maxSums[k]
	return achievableMax >= lowerNeeded && achievableMin <= upperNeeded
}

// CheckFC1 reports whether the remaining slots today can still land total
// daily calories within the +/-10% band, given an optional hard ceiling.
func CheckFC1(consumed float64, target float64, maxDailyCalories *int, slotsRemaining int, bounds MacroBounds) bool {
	if maxDailyCalories != nil && consumed > float64(*maxDailyCalories) {
		return false
	}
	remaining := target - consumed
	if slotsRemaining == 0 {
		tol := DailyToleranceFraction * target
		return remaining >= -tol && remaining <= tol
	}
	return boundsOverlapBand(remaining, slotsRemaining, bounds.CaloriesMin, bounds.CaloriesMax, target, DailyToleranceFraction)
}

// CheckFC2 reports whether the remaining slots today can still land protein
// and carbs within +/-10%, and fat within its absolute [min,max] range.
func CheckFC2(consumedProtein, targetProtein, consumedCarbs, targetCarbs, consumedFat float64, fatRange mealplan.FatRange, slotsRemaining int, bounds MacroBounds) bool {
	remainingProtein := targetProtein - consumedProtein
	remainingCarbs := targetCarbs - consumedCarbs
	remainingFatMin := fatRange.Min - consumedFat
	remainingFatMax := fatRange.Max - consumedFat

	if slotsRemaining == 0 {
		tolP := DailyToleranceFraction * targetProtein
		if remainingProtein < -tolP || remainingProtein > tolP {
			return false
		}
		tolC := DailyToleranceFraction * targetCarbs
		if remainingCarbs < -tolC || remainingCarbs > tolC {
			return false
		}
		return remainingFatMin <= 0 && remainingFatMax >= 0
	}

	if !boundsOverlapBand(remainingProtein, slotsRemaining, bounds.ProteinMin, bounds.ProteinMax, targetProtein, DailyToleranceFraction) {
		return false
	}
	if !boundsOverlapBand(remainingCarbs, slotsRemaining, bounds.CarbsMin, bounds.CarbsMax, targetCarbs, DailyToleranceFraction) {
		return false
	}
	achievableFatMin := bounds.FatMin[slotsRemaining]
	achievableFatMax := bounds.FatMax[slotsRemaining]
	return achievableFatMax >= remainingFatMin && achievableFatMin <= remainingFatMax
}

// CheckFC3 performs the same test as constraints.CheckHC4 but is exposed
// here as the "incremental" feasibility form used during candidate
// generation, where the recipe under test has not yet been committed.
func CheckFC3(recipe mealplan.Recipe, consumed map[string]float64, limits mealplan.UpperLimits) bool {
	for _, f := range mealplan.NutrientFields {
		limit, ok := limits.Get(f)
		if !ok {
			continue
		}
		if consumed[f]+recipe.Nutrition.Micronutrients.Get(f) > limit {
			return false
		}
	}
	return true
}

// CheckFC4 reports whether a cumulative weekly micronutrient deficit,
// measured against the total plan-wide RDI (dailyRDI * planDays), is still
// recoverable given the days left in the plan (days_remaining, which
// includes today). Day 0, no remaining days, or an untracked nutrient
// always passes.
func CheckFC4(dayIndex int, daysLeft int, planDays int, dailyRDI map[string]float64, weeklyConsumed map[string]float64, maxDailyAchievable map[string]map[int]float64, slotCountForDay int) bool {
	if dayIndex <= 0 || daysLeft <= 0 || len(dailyRDI) == 0 {
		return true
	}
	for n, rdi := range dailyRDI {
		if rdi <= 0 {
			continue
		}
		totalNeeded := rdi * float64(planDays)
		deficit := totalNeeded - weeklyConsumed[n]
		if deficit <= 0 {
			continue
		}
		maxAchievable := maxDailyAchievable[n][slotCountForDay]
		if deficit > float64(daysLeft)*maxAchievable {
			return false
		}
	}
	return true
}

// CheckFC5 reports whether the candidate set is non-empty and every future
// slot on this day retains at least one eligible recipe not already used
// (accounting for the tentative recipe being placed now).
func CheckFC5(candidates map[string]bool, tentativeRecipeID string, usedToday map[string]bool, futureSlotEligible []map[string]bool) bool {
	if len(candidates) == 0 {
		return false
	}
	usedAfter := make(map[string]bool, len(usedToday)+1)
	for id := range usedToday {
		usedAfter[id] = true
	}
	usedAfter[tentativeRecipeID] = true
	for _, eligible := range futureSlotEligible {
		remaining := false
		for id := range eligible {
			if !usedAfter[id] {
				remaining = true
				break
			}
		}
		if !remaining {
			return false
		}
	}
	return true
}
