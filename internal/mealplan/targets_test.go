package mealplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustedDailyTargetSpreadsCarryoverEvenly(t *testing.T) {
	assert.Equal(t, 25.0, AdjustedDailyTarget(20, 10, 2), "20 base + 10/2 carryover")
	assert.Equal(t, 20.0, AdjustedDailyTarget(20, 10, 0), "no days remaining leaves the base target untouched")
}

func TestComputePerMealTargetDistributesRemainingBudget(t *testing.T) {
	profile := UserProfile{DailyCalories: 2000, DailyProteinG: 150, DailyFatG: FatRange{Min: 50, Max: 90}, DailyCarbsG: 200}
	tracker := DailyTracker{SlotsTotal: 4, SlotsAssigned: 0}

	target := ComputePerMealTarget(tracker, profile, map[string]bool{}, SatietyModerate)
	assert.Equal(t, 500.0, target.Calories)
	assert.Equal(t, 37.5, target.ProteinG)
	assert.Equal(t, 50.0, target.CarbsG)
}

func TestComputePerMealTargetAppliesActivityShifts(t *testing.T) {
	profile := UserProfile{DailyCalories: 2000, DailyProteinG: 150, DailyFatG: FatRange{Min: 50, Max: 90}, DailyCarbsG: 200}
	tracker := DailyTracker{SlotsTotal: 4, SlotsAssigned: 0}

	baseline := ComputePerMealTarget(tracker, profile, map[string]bool{}, SatietyModerate)
	postWorkout := ComputePerMealTarget(tracker, profile, map[string]bool{ActivityPostWorkout: true}, SatietyModerate)

	assert.Greater(t, postWorkout.Calories, baseline.Calories)
	assert.Greater(t, postWorkout.ProteinG, baseline.ProteinG)
}

func TestComputePerMealTargetFloorsSlotsLeftAtOne(t *testing.T) {
	profile := UserProfile{DailyCalories: 500}
	tracker := DailyTracker{SlotsTotal: 3, SlotsAssigned: 3}
	target := ComputePerMealTarget(tracker, profile, map[string]bool{}, SatietyModerate)
	assert.Equal(t, 500.0, target.Calories, "no slots left still divides by at least one")
}

func TestRecomputeCarryoverAccumulatesUnmetNeed(t *testing.T) {
	profile := UserProfile{MicronutrientTargets: map[string]float64{"iron_mg": 18}}
	weekly := WeeklyTracker{
		WeeklyTotals:  Nutrition{Micronutrients: Micronutrients{IronMg: 20}},
		DaysCompleted: 2,
	}
	RecomputeCarryover(&weekly, profile)
	assert.Equal(t, 16.0, weekly.CarryoverNeeds["iron_mg"], "needed 36 over 2 days, consumed 20, so 16 outstanding")
}

func TestRecomputeCarryoverNeverGoesNegative(t *testing.T) {
	profile := UserProfile{MicronutrientTargets: map[string]float64{"iron_mg": 18}}
	weekly := WeeklyTracker{
		WeeklyTotals:  Nutrition{Micronutrients: Micronutrients{IronMg: 100}},
		DaysCompleted: 1,
	}
	RecomputeCarryover(&weekly, profile)
	assert.Equal(t, 0.0, weekly.CarryoverNeeds["iron_mg"])
}
