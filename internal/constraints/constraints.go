// Package constraints implements the hard constraints (HC-1 through HC-8,
// numbered to match the reference nutrition literature; there is no HC-7 in
// this system) that every assignment placed by the search must satisfy.
package constraints

import (
	"strings"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

// Identifiers, in the fixed order CheckAll evaluates them.
const (
	HC1 = "HC-1" // excluded ingredient
	HC2 = "HC-2" // same-day recipe reuse
	HC3 = "HC-3" // cooking time exceeds busyness bound
	HC4 = "HC-4" // daily upper limit exceeded
	HC5 = "HC-5" // max daily calories exceeded
	HC6 = "HC-6" // pinned assignment mismatch
	HC8 = "HC-8" // cross-day non-workout recipe reuse
)

// Identifiers lists the hard constraints in evaluation order.
var Identifiers = []string{HC1, HC2, HC3, HC4, HC5, HC6, HC8}

func normalizeIngredientName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func recipeContainsExcludedIngredient(recipe mealplan.Recipe, excluded []string) bool {
	if len(excluded) == 0 {
		return false
	}
	set := make(map[string]bool, len(excluded))
	for _, x := range excluded {
		set[normalizeIngredientName(x)] = true
	}
	for _, ing := range recipe.Ingredients {
		if set[normalizeIngredientName(ing.Name)] {
			return true
		}
	}
	return false
}

// CheckHC1 reports whether recipe contains none of the ingredients in
// excluded.
func CheckHC1(recipe mealplan.Recipe, excluded []string) bool {
	return !recipeContainsExcludedIngredient(recipe, excluded)
}

// CheckHC2 reports whether recipe has not already been used on this day.
func CheckHC2(recipe mealplan.Recipe, tracker *mealplan.DailyTracker) bool {
	if tracker == nil {
		return true
	}
	return !tracker.UsedRecipeIDs[recipe.ID]
}

// CheckHC3 reports whether recipe's cooking time fits the slot's busyness bound.
func CheckHC3(recipe mealplan.Recipe, slot mealplan.MealSlot) bool {
	maxTime, unbounded := mealplan.CookingTimeMax(slot.BusynessLevel)
	if unbounded {
		return true
	}
	return recipe.CookingTimeMinutes <= maxTime
}

// ulViolation reports whether adding recipe's micronutrient n to the day's
// consumed total would exceed the established upper limit, if any.
func ulViolation(n string, consumed float64, addition float64, limits mealplan.UpperLimits) bool {
	limit, ok := limits.Get(n)
	if !ok {
		return false
	}
	return consumed+addition > limit
}

// CheckHC4 reports whether placing recipe would keep every tracked
// micronutrient at or below its established daily upper limit. A missing
// tracker is treated as zero consumption so far.
func CheckHC4(recipe mealplan.Recipe, tracker *mealplan.DailyTracker, limits mealplan.UpperLimits) bool {
	for _, f := range mealplan.NutrientFields {
		consumed := 0.0
		if tracker != nil {
			consumed = tracker.MicronutrientsConsumed[f]
		}
		if ulViolation(f, consumed, recipe.Nutrition.Micronutrients.Get(f), limits) {
			return false
		}
	}
	return true
}

// CheckHC5 reports whether placing recipe would keep daily calories at or
// below the user's optional calorie ceiling. A nil ceiling always passes;
// equality with the ceiling is allowed.
func CheckHC5(recipe mealplan.Recipe, tracker *mealplan.DailyTracker, maxDailyCalories *int) bool {
	if maxDailyCalories == nil {
		return true
	}
	consumed := 0.0
	if tracker != nil {
		consumed = tracker.CaloriesConsumed
	}
	return consumed+recipe.Nutrition.Calories <= float64(*maxDailyCalories)
}

// CheckHC6 reports whether recipeID matches the pin for this slot, if any.
func CheckHC6(recipeID string, key mealplan.SlotKey, pinned map[mealplan.SlotKey]string) bool {
	want, ok := pinned[key]
	if !ok {
		return true
	}
	return recipeID == want
}

// CheckHC8 reports whether a non-workout recipe is free of reuse against the
// prior day's non-workout recipes. Workout slots and day 0 are always
// exempt.
func CheckHC8(recipe mealplan.Recipe, dayIndex int, isWorkoutSlot bool, previousDayTracker *mealplan.DailyTracker) bool {
	if dayIndex <= 0 || isWorkoutSlot {
		return true
	}
	if previousDayTracker == nil {
		return true
	}
	return !previousDayTracker.NonWorkoutRecipeIDs[recipe.ID]
}

// CheckAllInput bundles everything CheckAll needs to evaluate every hard
// constraint for one candidate placement.
type CheckAllInput struct {
	Recipe             mealplan.Recipe
	Key                mealplan.SlotKey
	Slot               mealplan.MealSlot
	DayIndex           int
	IsWorkoutSlot      bool
	Tracker            *mealplan.DailyTracker
	PreviousDayTracker *mealplan.DailyTracker
	Limits             mealplan.UpperLimits
	MaxDailyCalories   *int
	ExcludedIngredients []string
	PinnedAssignments  map[mealplan.SlotKey]string
}

// CheckAll evaluates every hard constraint in fixed order and returns the
// identifiers of every one violated (nil/empty when all pass).
func CheckAll(in CheckAllInput) []string {
	var violated []string
	if !CheckHC1(in.Recipe, in.ExcludedIngredients) {
		violated = append(violated, HC1)
	}
	if !CheckHC2(in.Recipe, in.Tracker) {
		violated = append(violated, HC2)
	}
	if !CheckHC3(in.Recipe, in.Slot) {
		violated = append(violated, HC3)
	}
	if !CheckHC4(in.Recipe, in.Tracker, in.Limits) {
		violated = append(violated, HC4)
	}
	if !CheckHC5(in.Recipe, in.Tracker, in.MaxDailyCalories) {
		violated = append(violated, HC5)
	}
	if !CheckHC6(in.Recipe.ID, in.Key, in.PinnedAssignments) {
		violated = append(violated, HC6)
	}
	if !CheckHC8(in.Recipe, in.DayIndex, in.IsWorkoutSlot, in.PreviousDayTracker) {
		violated = append(violated, HC8)
	}
	return violated
}
