package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

func writeScenarioFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadScenarioParsesScheduleAndRecipePool(t *testing.T) {
	path := writeScenarioFile(t, `{
		"daily_calories": 2000,
		"daily_protein_g": 150,
		"daily_fat_min_g": 50,
		"daily_fat_max_g": 90,
		"daily_carbs_g": 200,
		"demographic": "adult_male",
		"schedule": [[{"time": "08:00", "busyness_level": 2}]],
		"recipe_pool": [{"id": "r1", "nutrition": {"calories": 500}}]
	}`)

	scenario, err := loadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, scenario.DailyCalories)
	assert.Equal(t, "adult_male", scenario.Demographic)
	require.Len(t, scenario.Schedule, 1)
	require.Len(t, scenario.Schedule[0], 1)
	assert.Equal(t, "08:00", scenario.Schedule[0][0].Time)
	require.Len(t, scenario.RecipePool, 1)
	assert.Equal(t, "r1", scenario.RecipePool[0].ID)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := loadScenario(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestToProfileSeedsDefaultsWhenScenarioOmitsScalingFields(t *testing.T) {
	s := scenarioFile{
		DailyCalories: 2000,
		DailyFatMinG:  50,
		DailyFatMaxG:  90,
		Schedule:      [][]mealplan.MealSlot{{{Time: "08:00"}}},
	}
	profile := s.toProfile(3, 0.15, false)
	assert.Equal(t, 3, profile.MaxScalingSteps)
	assert.Equal(t, 0.15, profile.ScalingStepFraction)
	assert.False(t, profile.EnablePrimaryCarbDownscaling)
	assert.Equal(t, mealplan.FatRange{Min: 50, Max: 90}, profile.DailyFatG)
}

func TestToProfileScenarioOverridesTakePrecedenceOverDefaults(t *testing.T) {
	steps := 5
	fraction := 0.3
	enabled := true
	s := scenarioFile{
		MaxScalingSteps:              &steps,
		ScalingStepFraction:          &fraction,
		EnablePrimaryCarbDownscaling: &enabled,
		Schedule:                     [][]mealplan.MealSlot{{{Time: "08:00"}}},
	}
	profile := s.toProfile(3, 0.15, false)
	assert.Equal(t, 5, profile.MaxScalingSteps)
	assert.Equal(t, 0.3, profile.ScalingStepFraction)
	assert.True(t, profile.EnablePrimaryCarbDownscaling)
}

func TestToProfileConvertsPinnedAssignmentsToSlotKeyMap(t *testing.T) {
	s := scenarioFile{
		Schedule:          [][]mealplan.MealSlot{{{Time: "08:00"}, {Time: "13:00"}}},
		PinnedAssignments: []pinnedEntry{{Day: 0, Slot: 1, RecipeID: "r1"}},
	}
	profile := s.toProfile(3, 0.15, false)
	require.Len(t, profile.PinnedAssignments, 1)
	assert.Equal(t, "r1", profile.PinnedAssignments[mealplan.SlotKey{Day: 0, Slot: 1}])
}
