package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

// scenarioFile is the on-disk shape of a solve request: a user profile, a
// schedule, and the recipe pool to draw from. It exists because
// mealplan.UserProfile carries no JSON tags of its own — the search package
// only ever consumes UserProfile as a value built in memory.
type scenarioFile struct {
	DailyCalories        int                  `json:"daily_calories"`
	DailyProteinG        float64              `json:"daily_protein_g"`
	DailyFatMinG         float64              `json:"daily_fat_min_g"`
	DailyFatMaxG         float64              `json:"daily_fat_max_g"`
	DailyCarbsG          float64              `json:"daily_carbs_g"`
	MaxDailyCalories     *int                 `json:"max_daily_calories,omitempty"`
	Demographic          string               `json:"demographic"`
	ExcludedIngredients  []string             `json:"excluded_ingredients,omitempty"`
	LikedFoods           []string             `json:"liked_foods,omitempty"`
	UpperLimitOverrides  map[string]*float64  `json:"upper_limit_overrides,omitempty"`
	MicronutrientTargets map[string]float64   `json:"micronutrient_targets,omitempty"`
	ActivitySchedule     map[string]string    `json:"activity_schedule,omitempty"`
	PinnedAssignments    []pinnedEntry        `json:"pinned_assignments,omitempty"`
	Schedule             [][]mealplan.MealSlot `json:"schedule"`
	RecipePool           []mealplan.Recipe    `json:"recipe_pool"`

	EnablePrimaryCarbDownscaling *bool    `json:"enable_primary_carb_downscaling,omitempty"`
	MaxScalingSteps              *int     `json:"max_scaling_steps,omitempty"`
	ScalingStepFraction          *float64 `json:"scaling_step_fraction,omitempty"`
}

type pinnedEntry struct {
	Day      int    `json:"day"`
	Slot     int    `json:"slot"`
	RecipeID string `json:"recipe_id"`
}

func loadScenario(path string) (scenarioFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scenarioFile{}, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var out scenarioFile
	if err := json.Unmarshal(raw, &out); err != nil {
		return scenarioFile{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return out, nil
}

// toProfile converts the on-disk scenario into a mealplan.UserProfile,
// seeding fields the scenario omits from the given defaults.
func (s scenarioFile) toProfile(defaultMaxScalingSteps int, defaultScalingStepFraction float64, defaultDownscaling bool) mealplan.UserProfile {
	pinned := make(map[mealplan.SlotKey]string, len(s.PinnedAssignments))
	for _, p := range s.PinnedAssignments {
		pinned[mealplan.SlotKey{Day: p.Day, Slot: p.Slot}] = p.RecipeID
	}

	profile := mealplan.UserProfile{
		DailyCalories:        s.DailyCalories,
		DailyProteinG:        s.DailyProteinG,
		DailyFatG:            mealplan.FatRange{Min: s.DailyFatMinG, Max: s.DailyFatMaxG},
		DailyCarbsG:          s.DailyCarbsG,
		MaxDailyCalories:     s.MaxDailyCalories,
		Schedule:             s.Schedule,
		ExcludedIngredients:  s.ExcludedIngredients,
		LikedFoods:           s.LikedFoods,
		Demographic:          s.Demographic,
		UpperLimitOverrides:  s.UpperLimitOverrides,
		PinnedAssignments:    pinned,
		MicronutrientTargets: s.MicronutrientTargets,
		ActivitySchedule:     s.ActivitySchedule,

		EnablePrimaryCarbDownscaling: defaultDownscaling,
		MaxScalingSteps:              defaultMaxScalingSteps,
		ScalingStepFraction:          defaultScalingStepFraction,
	}
	if s.EnablePrimaryCarbDownscaling != nil {
		profile.EnablePrimaryCarbDownscaling = *s.EnablePrimaryCarbDownscaling
	}
	if s.MaxScalingSteps != nil {
		profile.MaxScalingSteps = *s.MaxScalingSteps
	}
	if s.ScalingStepFraction != nil {
		profile.ScalingStepFraction = *s.ScalingStepFraction
	}
	return profile
}
