// Package candidates generates the eligible recipe set C(d, s) for one
// decision point by running the hard-constraint and forward-feasibility
// pipeline, and signals when the branch should backtrack immediately
// because no viable continuation remains.
package candidates

import (
	"github.com/nutriplan/mealsolver/internal/constraints"
	"github.com/nutriplan/mealsolver/internal/feasibility"
	"github.com/nutriplan/mealsolver/internal/mealplan"
)

// GenerationResult is the outcome of generating candidates for one slot.
type GenerationResult struct {
	Candidates               map[string]bool
	TriggerBacktrack         bool
	CalorieExcessRejections  map[string]bool
}

// Input bundles everything Generate needs to evaluate one decision point.
type Input struct {
	RecipePool    []mealplan.Recipe
	DayIndex      int
	SlotIndex     int
	DailyTrackers map[int]mealplan.DailyTracker
	WeeklyTracker mealplan.WeeklyTracker
	Schedule      [][]mealplan.MealSlot
	Profile       mealplan.UserProfile
	Limits        mealplan.UpperLimits
	MacroBounds   feasibility.MacroBounds
}

func getSlot(schedule [][]mealplan.MealSlot, dayIndex, slotIndex int) (mealplan.MealSlot, bool) {
	if dayIndex < 0 || dayIndex >= len(schedule) {
		return mealplan.MealSlot{}, false
	}
	day := schedule[dayIndex]
	if slotIndex < 0 || slotIndex >= len(day) {
		return mealplan.MealSlot{}, false
	}
	return day[slotIndex], true
}

func trackerPtr(trackers map[int]mealplan.DailyTracker, day int) *mealplan.DailyTracker {
	t, ok := trackers[day]
	if !ok {
		return nil
	}
	return &t
}

func rejectedSolelyCalorieFC1(recipe mealplan.Recipe, dayIndex int, trackers map[int]mealplan.DailyTracker, maxDailyCalories *int) bool {
	if maxDailyCalories == nil {
		return false
	}
	currentCal := 0.0
	if t, ok := trackers[dayIndex]; ok {
		currentCal = t.CaloriesConsumed
	}
	return currentCal+recipe.Nutrition.Calories > float64(*maxDailyCalories)
}

func hcOnlyEligible(pool []mealplan.Recipe, dayIndex int, slot mealplan.MealSlot, key mealplan.SlotKey, tracker *mealplan.DailyTracker, previousDayTracker *mealplan.DailyTracker, profile mealplan.UserProfile, isWorkout bool) map[string]bool {
	out := map[string]bool{}
	for _, r := range pool {
		if !constraints.CheckHC1(r, profile.ExcludedIngredients) {
			continue
		}
		if !constraints.CheckHC2(r, tracker) {
			continue
		}
		if !constraints.CheckHC3(r, slot) {
			continue
		}
		if dayIndex > 0 && !isWorkout {
			if !constraints.CheckHC8(r, dayIndex, isWorkout, previousDayTracker) {
				continue
			}
		}
		out[r.ID] = true
	}
	return out
}

func filterSteps1Through7(in Input, slot mealplan.MealSlot, isWorkout bool, slotsRemainingAfter int) (map[string]bool, map[string]bool) {
	key := mealplan.SlotKey{Day: in.DayIndex, Slot: in.SlotIndex}
	tracker := trackerPtr(in.DailyTrackers, in.DayIndex)
	previousDayTracker := trackerPtr(in.DailyTrackers, in.DayIndex-1)

	calorieExcess := map[string]bool{}
	surviving := make([]mealplan.Recipe, 0, len(in.RecipePool))

	for _, r := range in.RecipePool {
		if !constraints.CheckHC1(r, in.Profile.ExcludedIngredients) {
			continue
		}
		if !constraints.CheckHC2(r, tracker) {
			continue
		}
		surviving = append(surviving, r)
	}

	next := surviving[:0:0]
	for _, r := range surviving {
		if constraints.CheckHC3(r, slot) {
			next = append(next, r)
		}
	}
	surviving = next

	next = surviving[:0:0]
	for _, r := range surviving {
		if constraints.CheckHC5(r, tracker, in.Profile.MaxDailyCalories) {
			next = append(next, r)
		} else {
			calorieExcess[r.ID] = true
		}
	}
	surviving = next

	if in.DayIndex > 0 && !isWorkout {
		next = surviving[:0:0]
		for _, r := range surviving {
			if constraints.CheckHC8(r, in.DayIndex, isWorkout, previousDayTracker) {
				next = append(next, r)
			}
		}
		surviving = next
	}

	consumed := map[string]float64{}
	consumedProtein, consumedCarbs, consumedFat, consumedCal := 0.0, 0.0, 0.0, 0.0
	if tracker != nil {
		consumed = tracker.MicronutrientsConsumed
		consumedProtein = tracker.ProteinConsumed
		consumedCarbs = tracker.CarbsConsumed
		consumedFat = tracker.FatConsumed
		consumedCal = tracker.CaloriesConsumed
	}

	candidates := map[string]bool{}
	for _, r := range surviving {
		fc1OK := feasibility.CheckFC1(consumedCal+r.Nutrition.Calories, float64(in.Profile.DailyCalories), in.Profile.MaxDailyCalories, slotsRemainingAfter, in.MacroBounds)
		if !fc1OK {
			if rejectedSolelyCalorieFC1(r, in.DayIndex, in.DailyTrackers, in.Profile.MaxDailyCalories) {
				calorieExcess[r.ID] = true
			}
			continue
		}
		fc2OK := feasibility.CheckFC2(
			consumedProtein+r.Nutrition.ProteinG, in.Profile.DailyProteinG,
			consumedCarbs+r.Nutrition.CarbsG, in.Profile.DailyCarbsG,
			consumedFat+r.Nutrition.FatG, in.Profile.DailyFatG,
			slotsRemainingAfter, in.MacroBounds,
		)
		if !fc2OK {
			continue
		}
		if !feasibility.CheckFC3(r, consumed, in.Limits) {
			continue
		}
		candidates[r.ID] = true
	}

	_ = key
	return candidates, calorieExcess
}

func futureSlotHasZeroEligible(in Input, candidateSet map[string]bool) bool {
	if in.DayIndex >= len(in.Schedule) {
		return false
	}
	daySlots := in.Schedule[in.DayIndex]
	tracker := trackerPtr(in.DailyTrackers, in.DayIndex)
	previousDayTracker := trackerPtr(in.DailyTrackers, in.DayIndex-1)
	var nextFirst *mealplan.MealSlot
	if in.DayIndex+1 < len(in.Schedule) {
		nextFirst = &in.Schedule[in.DayIndex+1][0]
	}
	var futureEligible []map[string]bool
	for sPrime := in.SlotIndex + 1; sPrime < len(daySlots); sPrime++ {
		slotS, ok := getSlot(in.Schedule, in.DayIndex, sPrime)
		if !ok {
			continue
		}
		ctx := mealplan.ActivityContext(slotS, sPrime, daySlots, nextFirst, in.Profile.ActivitySchedule)
		isWk := mealplan.IsWorkoutSlot(ctx)
		key := mealplan.SlotKey{Day: in.DayIndex, Slot: sPrime}
		eligible := hcOnlyEligible(in.RecipePool, in.DayIndex, slotS, key, tracker, previousDayTracker, in.Profile, isWk)
		if len(eligible) == 0 {
			return true
		}
		futureEligible = append(futureEligible, eligible)
	}
	usedToday := map[string]bool{}
	if tracker != nil {
		usedToday = tracker.UsedRecipeIDs
	}
	for id := range candidateSet {
		if feasibility.CheckFC5(candidateSet, id, usedToday, futureEligible) {
			return false
		}
	}
	return true
}

// Generate computes C(d, s) and the backtrack signal for one decision
// point. It performs no mutation and does not apply scoring or the
// optional Primary Carb Downscaling step.
func Generate(in Input) GenerationResult {
	slot, ok := getSlot(in.Schedule, in.DayIndex, in.SlotIndex)
	if !ok {
		return GenerationResult{Candidates: map[string]bool{}, TriggerBacktrack: true}
	}

	daySlots := in.Schedule[in.DayIndex]
	var nextFirst *mealplan.MealSlot
	if in.DayIndex+1 < len(in.Schedule) {
		nextFirst = &in.Schedule[in.DayIndex+1][0]
	}
	actCtx := mealplan.ActivityContext(slot, in.SlotIndex, daySlots, nextFirst, in.Profile.ActivitySchedule)
	isWorkout := mealplan.IsWorkoutSlot(actCtx)

	slotsRemainingAfter := len(daySlots) - (in.SlotIndex + 1)

	candidateSet, calorieExcess := filterSteps1Through7(in, slot, isWorkout, slotsRemainingAfter)

	trigger := false
	if len(candidateSet) == 0 {
		trigger = true
	} else if futureSlotHasZeroEligible(in, candidateSet) {
		trigger = true
	}

	return GenerationResult{
		Candidates:              candidateSet,
		TriggerBacktrack:        trigger,
		CalorieExcessRejections: calorieExcess,
	}
}
