// Package scoring computes the composite desirability score used to order
// candidates at each decision point. Scoring is pure and never mutates or
// consults anything beyond the read-only state handed to it.
package scoring

import (
	"github.com/nutriplan/mealsolver/internal/mealplan"
)

// Component weights (Section 8.2), normalized from a base of 110.
const (
	WNutrition     = 40.0 / 110.0
	WMicronutrient = 30.0 / 110.0
	WSatiety       = 15.0 / 110.0
	WBalance       = 15.0 / 110.0
	WSchedule      = 10.0 / 110.0
)

// NutritionDeviationTolerance is the +/-10% band a macro subscore is graded
// against.
const NutritionDeviationTolerance = 0.10

// Busyness4ReferenceMinutes is the cooking-time target used to score
// unbounded (busyness 4) slots by proximity rather than a hard ceiling.
const Busyness4ReferenceMinutes = 30

func clampScore(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}

func macroSubscore(actual, target float64) float64 {
	if target <= 0 {
		return 100
	}
	deviation := abs(actual-target) / target
	return clampScore(100 * (1 - deviation/NutritionDeviationTolerance))
}

func fatSubscore(recipeFat, mealFatMin, mealFatMax float64) float64 {
	if mealFatMax <= mealFatMin {
		return 100
	}
	midpoint := (mealFatMin + mealFatMax) / 2
	halfRange := (mealFatMax - mealFatMin) / 2
	if halfRange <= 0 {
		return 100
	}
	deviation := abs(recipeFat-midpoint) / halfRange
	if deviation > 1 {
		deviation = 1
	}
	return clampScore(100 * (1 - deviation))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// NutritionMatch scores calories/protein/fat/carbs against the per-meal
// target, averaging the four subscores.
func NutritionMatch(nutrition mealplan.Nutrition, perMeal mealplan.PerMealTarget) float64 {
	calScore := macroSubscore(nutrition.Calories, perMeal.Calories)
	proScore := macroSubscore(nutrition.ProteinG, perMeal.ProteinG)
	fatScore := fatSubscore(nutrition.FatG, perMeal.FatMin, perMeal.FatMax)
	carbScore := macroSubscore(nutrition.CarbsG, perMeal.CarbsG)
	return (calScore + proScore + fatScore + carbScore) / 4
}

// MicronutrientMatchInput bundles the state needed to score how well a
// recipe fills the largest remaining micronutrient gaps.
type MicronutrientMatchInput struct {
	RecipeMicronutrients mealplan.Micronutrients
	Tracked              map[string]float64 // nutrient -> base daily target
	Consumed             map[string]float64 // today's tracker, may be nil
	WeeklyConsumed       map[string]float64
	CarryoverNeeds       map[string]float64
	DaysRemaining        int
}

// MicronutrientMatch scores a recipe by how much of the currently
// outstanding micronutrient gap (weighted by gap size plus carryover) it
// fills. Untracked nutrient sets and zero total weight both fall back to a
// neutral 50.
func MicronutrientMatch(in MicronutrientMatchInput) float64 {
	if len(in.Tracked) == 0 {
		return 50
	}
	daysLeft := in.DaysRemaining
	if daysLeft <= 0 {
		daysLeft = 1
	}

	stillNeeded := map[string]float64{}
	for n, base := range in.Tracked {
		if base <= 0 {
			continue
		}
		adj := mealplan.AdjustedDailyTarget(base, in.CarryoverNeeds[n], daysLeft)
		cur := 0.0
		if in.Consumed != nil {
			cur = in.Consumed[n]
		}
		if cur < adj {
			stillNeeded[n] = adj - cur
		}
	}

	totalContribution, totalWeight := 0.0, 0.0
	for n, gap := range stillNeeded {
		if gap <= 0 {
			continue
		}
		amount := in.RecipeMicronutrients.Get(n)
		if amount <= 0 {
			continue
		}
		fillRatio := amount / gap
		if fillRatio > 1 {
			fillRatio = 1
		}
		weight := gap + in.CarryoverNeeds[n]
		totalContribution += weight * fillRatio
		totalWeight += weight
	}

	if totalWeight <= 0 {
		return 50
	}
	return clampScore(100 * (totalContribution / totalWeight))
}

// SatietyMatch scores a recipe against a "high" or "moderate" satiety
// requirement.
func SatietyMatch(nutrition mealplan.Nutrition, satiety string) float64 {
	if satiety == mealplan.SatietyHigh {
		sFiber := minf(100, nutrition.Micronutrients.FiberG*6)
		sPro := minf(100, nutrition.ProteinG*2.5)
		sCal := minf(100, nutrition.Calories/6)
		return clampScore((sFiber + sPro + sCal) / 3)
	}
	return clampScore(70 - abs(nutrition.ProteinG-25)*0.5)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// BalanceInput bundles the state needed to score a recipe's contribution to
// macro trajectory and micronutrient diversity for the remainder of the day.
type BalanceInput struct {
	Recipe        mealplan.Recipe
	Tracker       *mealplan.DailyTracker
	DailyCalories float64
	DailyProteinG float64
	DailyFatG     mealplan.FatRange
	DailyCarbsG   float64
}

// Balance scores how well a recipe keeps the day on a macro trajectory
// toward its remaining targets, averaged with how many previously-unmet
// micronutrients it newly contributes.
func Balance(in BalanceInput) float64 {
	if in.Tracker == nil {
		return 50
	}
	tracker := in.Tracker
	slotsLeft := tracker.SlotsTotal - tracker.SlotsAssigned
	if slotsLeft < 1 {
		slotsLeft = 1
	}
	f := float64(slotsLeft)

	dailyFatMid := (in.DailyFatG.Min + in.DailyFatG.Max) / 2

	remCal := in.DailyCalories - tracker.CaloriesConsumed
	remPro := in.DailyProteinG - tracker.ProteinConsumed
	remFat := dailyFatMid - tracker.FatConsumed
	remCarb := in.DailyCarbsG - tracker.CarbsConsumed

	needCal := remCal / f
	needPro := remPro / f
	needFat := remFat / f
	needCarb := remCarb / f

	n := in.Recipe.Nutrition
	tCal := 50.0
	if needCal > 0 {
		tCal = macroSubscore(n.Calories, needCal)
	}
	tPro := 50.0
	if needPro != 0 {
		tPro = macroSubscore(n.ProteinG, needPro)
	}
	tFat := 50.0
	if needFat != 0 {
		tFat = macroSubscore(n.FatG, needFat)
	}
	tCarb := 50.0
	if needCarb > 0 {
		tCarb = macroSubscore(n.CarbsG, needCarb)
	}
	trajectory := (tCal + tPro + tFat + tCarb) / 4

	novel := 0
	hasMicro := false
	for _, field := range mealplan.NutrientFields {
		v := n.Micronutrients.Get(field)
		if v > 0 {
			hasMicro = true
			if tracker.MicronutrientsConsumed[field] < 1.0 {
				novel++
			}
		}
	}
	diversity := 50.0
	if hasMicro {
		diversity = minf(100, float64(novel)*10)
	}

	return clampScore((trajectory + diversity) / 2)
}

// ScheduleMatch scores how efficiently a recipe uses the cooking-time
// budget available to a slot.
func ScheduleMatch(cookingTimeMinutes int, busynessLevel int) float64 {
	maxCT, unbounded := mealplan.CookingTimeMax(busynessLevel)
	if !unbounded {
		if cookingTimeMinutes > maxCT {
			return 0
		}
		denom := maxCT
		if denom < 1 {
			denom = 1
		}
		return clampScore(100 * (1 - float64(cookingTimeMinutes)/float64(denom)))
	}
	dist := abs(float64(cookingTimeMinutes - Busyness4ReferenceMinutes))
	v := 100 - dist*2
	if v < 0 {
		v = 0
	}
	return clampScore(v)
}

// CompositeInput bundles everything CompositeScore needs to evaluate a
// single candidate recipe at a single decision point.
type CompositeInput struct {
	Recipe             mealplan.Recipe
	Slot               mealplan.MealSlot
	Tracker            *mealplan.DailyTracker
	Profile            mealplan.UserProfile
	PerMeal            mealplan.PerMealTarget
	Satiety            string
	WeeklyTracker      mealplan.WeeklyTracker
}

// CompositeScore combines the five weighted components into the final
// [0, 100] desirability score used for candidate ordering.
func CompositeScore(in CompositeInput) float64 {
	nMatch := NutritionMatch(in.Recipe.Nutrition, in.PerMeal)

	var consumed map[string]float64
	if in.Tracker != nil {
		consumed = in.Tracker.MicronutrientsConsumed
	}
	microMatch := MicronutrientMatch(MicronutrientMatchInput{
		RecipeMicronutrients: in.Recipe.Nutrition.Micronutrients,
		Tracked:              in.Profile.MicronutrientTargets,
		Consumed:             consumed,
		WeeklyConsumed:       in.WeeklyTracker.WeeklyTotals.Micronutrients.ToMap(),
		CarryoverNeeds:       in.WeeklyTracker.CarryoverNeeds,
		DaysRemaining:        in.WeeklyTracker.DaysRemaining,
	})

	satMatch := SatietyMatch(in.Recipe.Nutrition, in.Satiety)

	bal := Balance(BalanceInput{
		Recipe:        in.Recipe,
		Tracker:       in.Tracker,
		DailyCalories: float64(in.Profile.DailyCalories),
		DailyProteinG: in.Profile.DailyProteinG,
		DailyFatG:     in.Profile.DailyFatG,
		DailyCarbsG:   in.Profile.DailyCarbsG,
	})

	sched := ScheduleMatch(in.Recipe.CookingTimeMinutes, in.Slot.BusynessLevel)

	composite := WNutrition*nMatch + WMicronutrient*microMatch + WSatiety*satMatch + WBalance*bal + WSchedule*sched
	return clampScore(composite)
}
