package mealplan

import "strings"

// PinnedValidationResult is the outcome of pre-validating pinned assignments
// before a search begins. When Success is false, FailedHC names the hard
// constraint the offending pin violates (e.g. "HC-1").
type PinnedValidationResult struct {
	Success            bool
	FailedHC           string
	FailedPinDay1Based int
	FailedPinSlotIndex int
	FailedPinRecipeID  string
}

func normalizeIngredientName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func recipeContainsExcludedIngredient(recipe Recipe, excluded []string) bool {
	if len(excluded) == 0 {
		return false
	}
	excludedNorm := make(map[string]bool, len(excluded))
	for _, x := range excluded {
		excludedNorm[normalizeIngredientName(x)] = true
	}
	for _, ing := range recipe.Ingredients {
		if excludedNorm[normalizeIngredientName(ing.Name)] {
			return true
		}
	}
	return false
}

// ValidatePinnedAssignments pre-validates every pinned assignment against
// HC-1, HC-2 (among pins), HC-3, HC-5, and HC-8 (among pins), without
// building any search state. Callers must not proceed to search unless the
// result is successful.
func ValidatePinnedAssignments(profile UserProfile, recipeByID map[string]Recipe, d int) PinnedValidationResult {
	pinned := profile.PinnedAssignments
	if len(pinned) == 0 {
		return PinnedValidationResult{Success: true}
	}
	if err := ValidatePlanningHorizon(d); err != nil {
		return PinnedValidationResult{Success: false, FailedHC: "HC-6"}
	}
	if err := ValidateScheduleStructure(profile.Schedule, d); err != nil {
		return PinnedValidationResult{Success: false, FailedHC: "HC-6"}
	}

	for key, recipeID := range pinned {
		day1 := key.Day + 1
		if day1 < 1 || day1 > d {
			return PinnedValidationResult{Success: false, FailedHC: "HC-6"}
		}
		dayIndex := key.Day
		if dayIndex >= len(profile.Schedule) || key.Slot < 0 || key.Slot >= len(profile.Schedule[dayIndex]) {
			return PinnedValidationResult{Success: false, FailedHC: "HC-6", FailedPinDay1Based: day1, FailedPinSlotIndex: key.Slot, FailedPinRecipeID: recipeID}
		}
		recipe, ok := recipeByID[recipeID]
		if !ok {
			return PinnedValidationResult{Success: false, FailedHC: "HC-6", FailedPinDay1Based: day1, FailedPinSlotIndex: key.Slot, FailedPinRecipeID: recipeID}
		}

		if recipeContainsExcludedIngredient(recipe, profile.ExcludedIngredients) {
			return PinnedValidationResult{Success: false, FailedHC: "HC-1", FailedPinDay1Based: day1, FailedPinSlotIndex: key.Slot, FailedPinRecipeID: recipeID}
		}

		daySlots := profile.Schedule[dayIndex]
		slot := daySlots[key.Slot]
		maxTime, unbounded := CookingTimeMax(slot.BusynessLevel)
		if !unbounded && recipe.CookingTimeMinutes > maxTime {
			return PinnedValidationResult{Success: false, FailedHC: "HC-3", FailedPinDay1Based: day1, FailedPinSlotIndex: key.Slot, FailedPinRecipeID: recipeID}
		}

		if profile.MaxDailyCalories != nil && recipe.Nutrition.Calories > float64(*profile.MaxDailyCalories) {
			return PinnedValidationResult{Success: false, FailedHC: "HC-5", FailedPinDay1Based: day1, FailedPinSlotIndex: key.Slot, FailedPinRecipeID: recipeID}
		}
	}

	// HC-2 among pins: two pins on the same day sharing a recipe id.
	byDay := map[int][]struct {
		Slot     int
		RecipeID string
	}{}
	for key, recipeID := range pinned {
		day1 := key.Day + 1
		byDay[day1] = append(byDay[day1], struct {
			Slot     int
			RecipeID string
		}{key.Slot, recipeID})
	}
	for day1, slots := range byDay {
		seen := map[string]bool{}
		for _, s := range slots {
			if seen[s.RecipeID] {
				return PinnedValidationResult{Success: false, FailedHC: "HC-2", FailedPinDay1Based: day1, FailedPinSlotIndex: s.Slot, FailedPinRecipeID: s.RecipeID}
			}
			seen[s.RecipeID] = true
		}
	}

	// HC-8 among pins: same non-workout recipe pinned on two consecutive days.
	activitySchedule := profile.ActivitySchedule
	nonWorkoutPinnedByDay := map[int]map[string]bool{}
	for day1 := 1; day1 <= d; day1++ {
		dayIndex := day1 - 1
		daySlots := profile.Schedule[dayIndex]
		var nextFirst *MealSlot
		if dayIndex+1 < len(profile.Schedule) {
			nextFirst = &profile.Schedule[dayIndex+1][0]
		}
		ids := map[string]bool{}
		for key, recipeID := range pinned {
			if key.Day+1 != day1 {
				continue
			}
			slot := daySlots[key.Slot]
			ctx := ActivityContext(slot, key.Slot, daySlots, nextFirst, activitySchedule)
			if !IsWorkoutSlot(ctx) {
				ids[recipeID] = true
			}
		}
		nonWorkoutPinnedByDay[day1] = ids
	}
	for day1 := 1; day1 < d; day1++ {
		for rid := range nonWorkoutPinnedByDay[day1] {
			if nonWorkoutPinnedByDay[day1+1][rid] {
				return PinnedValidationResult{Success: false, FailedHC: "HC-8", FailedPinDay1Based: day1 + 1, FailedPinSlotIndex: 0, FailedPinRecipeID: rid}
			}
		}
	}

	return PinnedValidationResult{Success: true}
}

// InitialState is the search's starting point S0, built entirely from
// pinned assignments.
type InitialState struct {
	Assignments   []Assignment
	DailyTrackers map[int]DailyTracker
	WeeklyTracker WeeklyTracker
}

// BuildInitialState constructs S0 from profile.PinnedAssignments. Callers
// must have already run ValidatePinnedAssignments successfully.
func BuildInitialState(profile UserProfile, recipeByID map[string]Recipe, d int) InitialState {
	schedule := profile.Schedule
	pinned := profile.PinnedAssignments
	activitySchedule := profile.ActivitySchedule

	var assignments []Assignment
	dailyTrackers := map[int]DailyTracker{}

	for dayIndex := 0; dayIndex < d; dayIndex++ {
		daySlots := schedule[dayIndex]
		slotsTotal := len(daySlots)
		var nextFirst *MealSlot
		if dayIndex+1 < d {
			nextFirst = &schedule[dayIndex+1][0]
		}

		tracker := NewDailyTracker(slotsTotal)
		slotsAssigned := 0

		for slotIndex := 0; slotIndex < slotsTotal; slotIndex++ {
			key := SlotKey{Day: dayIndex, Slot: slotIndex}
			recipeID, ok := pinned[key]
			if !ok {
				continue
			}
			recipe := recipeByID[recipeID]
			assignments = append(assignments, Assignment{Day: dayIndex, Slot: slotIndex, RecipeID: recipeID})
			n := recipe.Nutrition
			tracker.CaloriesConsumed += n.Calories
			tracker.ProteinConsumed += n.ProteinG
			tracker.FatConsumed += n.FatG
			tracker.CarbsConsumed += n.CarbsG
			for _, f := range NutrientFields {
				tracker.MicronutrientsConsumed[f] += n.Micronutrients.Get(f)
			}
			tracker.UsedRecipeIDs[recipeID] = true
			slot := daySlots[slotIndex]
			ctx := ActivityContext(slot, slotIndex, daySlots, nextFirst, activitySchedule)
			if !IsWorkoutSlot(ctx) {
				tracker.NonWorkoutRecipeIDs[recipeID] = true
			}
			slotsAssigned++
		}

		if slotsAssigned > 0 {
			tracker.SlotsAssigned = slotsAssigned
			dailyTrackers[dayIndex] = tracker
		}
	}

	weeklyTotals := Nutrition{}
	for dayIndex := 0; dayIndex < d; dayIndex++ {
		t, ok := dailyTrackers[dayIndex]
		if !ok {
			continue
		}
		dayNut := Nutrition{
			Calories: t.CaloriesConsumed,
			ProteinG: t.ProteinConsumed,
			FatG:     t.FatConsumed,
			CarbsG:   t.CarbsConsumed,
			Micronutrients: FromMap(t.MicronutrientsConsumed),
		}
		weeklyTotals = weeklyTotals.Add(dayNut)
	}

	carryover := make(map[string]float64, len(profile.MicronutrientTargets))
	for n := range profile.MicronutrientTargets {
		carryover[n] = 0
	}

	return InitialState{
		Assignments: assignments,
		DailyTrackers: dailyTrackers,
		WeeklyTracker: WeeklyTracker{
			WeeklyTotals:   weeklyTotals,
			DaysCompleted:  0,
			DaysRemaining:  d,
			CarryoverNeeds: carryover,
		},
	}
}
