// Package carbscale implements the optional Primary Carb Downscaling
// feature: for recipes rejected on calorie grounds, it generates scaled
// variants that shrink only the recipe's primary starchy carb contribution,
// then re-validates each variant against the same hard constraints and
// feasibility checks a full candidate would face.
package carbscale

import (
	"fmt"
	"strings"

	"github.com/nutriplan/mealsolver/internal/constraints"
	"github.com/nutriplan/mealsolver/internal/feasibility"
	"github.com/nutriplan/mealsolver/internal/mealplan"
	"github.com/nutriplan/mealsolver/internal/reference"
)

// ScalableSources is the reference list of ingredient names eligible for
// primary-carb downscaling, loaded by internal/reference.
type ScalableSources = reference.ScalableSources

func sourceSet(sources ScalableSources) map[string]bool {
	set := make(map[string]bool, len(sources.RiceVariants)+len(sources.PotatoVariants))
	for _, v := range sources.RiceVariants {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	for _, v := range sources.PotatoVariants {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}

// IsRecipeScalable reports whether recipe carries a primary carb
// contribution whose source is in the scalable reference list.
func IsRecipeScalable(recipe mealplan.Recipe, sources ScalableSources) bool {
	if recipe.PrimaryCarbContribution == nil {
		return false
	}
	src := strings.ToLower(strings.TrimSpace(recipe.PrimaryCarbSource))
	if src == "" {
		return false
	}
	return sourceSet(sources)[src]
}

func clampSigma(maxScalingSteps int, scalingStepFraction float64) (k int, sigma float64) {
	k = maxScalingSteps
	if k < 1 {
		k = 1
	}
	sigma = scalingStepFraction
	if sigma < 0 {
		sigma = 0
	}
	if sigma > 1 {
		sigma = 1
	}
	if float64(k)*sigma >= 1.0 {
		sigma = 0.99 / float64(k)
	}
	return k, sigma
}

// ComputeVariantNutrition returns the nutrition for stepIndex applied to
// recipe's primary carb contribution. stepIndex 0 returns the base
// nutrition unchanged. It returns an error naming the specific field that
// would go negative, since a malformed contribution must never silently
// produce an invalid variant.
func ComputeVariantNutrition(recipe mealplan.Recipe, stepIndex int, maxScalingSteps int, scalingStepFraction float64) (mealplan.Nutrition, error) {
	if stepIndex <= 0 || recipe.PrimaryCarbContribution == nil {
		return recipe.Nutrition, nil
	}
	contrib := *recipe.PrimaryCarbContribution
	_, sigma := clampSigma(maxScalingSteps, scalingStepFraction)
	scale := 1.0 - float64(stepIndex)*sigma
	if scale <= 0 {
		scale = 1e-9
	}

	cCal := contrib.Calories * scale
	cPro := contrib.ProteinG * scale
	cFat := contrib.FatG * scale
	cCarb := contrib.CarbsG * scale

	base := recipe.Nutrition
	vCal := base.Calories - contrib.Calories + cCal
	vPro := base.ProteinG - contrib.ProteinG + cPro
	vFat := base.FatG - contrib.FatG + cFat
	vCarb := base.CarbsG - contrib.CarbsG + cCarb

	if vCal < 0 {
		return mealplan.Nutrition{}, fmt.Errorf("invalid primary carb contribution for recipe %s: calories would become negative after scaling", recipe.ID)
	}
	if vPro < 0 {
		return mealplan.Nutrition{}, fmt.Errorf("invalid primary carb contribution for recipe %s: protein_g would become negative after scaling", recipe.ID)
	}
	if vFat < 0 {
		return mealplan.Nutrition{}, fmt.Errorf("invalid primary carb contribution for recipe %s: fat_g would become negative after scaling", recipe.ID)
	}
	if vCarb < 0 {
		return mealplan.Nutrition{}, fmt.Errorf("invalid primary carb contribution for recipe %s: carbs_g would become negative after scaling", recipe.ID)
	}

	var vMicro mealplan.Micronutrients
	for _, f := range mealplan.NutrientFields {
		b := base.Micronutrients.Get(f)
		o := contrib.Micronutrients.Get(f)
		v := b - o + o*scale
		if v < 0 {
			return mealplan.Nutrition{}, fmt.Errorf("invalid primary carb contribution for recipe %s: %s would become negative after scaling", recipe.ID, f)
		}
		vMicro.Set(f, v)
	}

	return mealplan.Nutrition{Calories: vCal, ProteinG: vPro, FatG: vFat, CarbsG: vCarb, Micronutrients: vMicro}, nil
}

// Variant is one scaled recipe rendering that survived re-validation.
type Variant struct {
	RecipeID     string
	VariantIndex int
	Nutrition    mealplan.Nutrition
}

// GenerateInput bundles everything GenerateScaledVariants needs.
type GenerateInput struct {
	RecipePool              []mealplan.Recipe
	CalorieExcessRejections map[string]bool
	DayIndex                int
	SlotIndex               int
	Slot                    mealplan.MealSlot
	Tracker                 *mealplan.DailyTracker
	PreviousDayTracker      *mealplan.DailyTracker
	WeeklyTracker           mealplan.WeeklyTracker
	Profile                 mealplan.UserProfile
	Limits                  mealplan.UpperLimits
	MacroBounds             feasibility.MacroBounds
	ScalableSources         ScalableSources
	ActivityContext         map[string]bool
	IsWorkout               bool
	SlotsRemainingAfter     int
}

// GenerateScaledVariants produces every scaled variant, across recipes
// rejected solely for calorie excess, that passes re-validation against
// HC-1, HC-2, HC-3, HC-5, (HC-8 when applicable), FC-1, FC-2, and FC-3. It
// never recurses: each variant scales the base recipe's own contribution,
// never another variant's.
func GenerateScaledVariants(in GenerateInput) []Variant {
	if !in.Profile.EnablePrimaryCarbDownscaling {
		return nil
	}
	if !in.ActivityContext[mealplan.ActivitySedentary] {
		return nil
	}
	key := mealplan.SlotKey{Day: in.DayIndex, Slot: in.SlotIndex}
	if _, pinned := in.Profile.PinnedAssignments[key]; pinned {
		return nil
	}

	k, sigma := clampSigma(in.Profile.MaxScalingSteps, in.Profile.ScalingStepFraction)

	var out []Variant
	for _, recipe := range in.RecipePool {
		if !in.CalorieExcessRejections[recipe.ID] {
			continue
		}
		if !IsRecipeScalable(recipe, in.ScalableSources) || recipe.PrimaryCarbContribution == nil {
			continue
		}
		for i := 1; i <= k; i++ {
			scale := 1.0 - float64(i)*sigma
			if scale <= 0 {
				continue
			}
			variantNutrition, err := ComputeVariantNutrition(recipe, i, in.Profile.MaxScalingSteps, in.Profile.ScalingStepFraction)
			if err != nil {
				continue
			}
			view := recipe
			view.Nutrition = variantNutrition

			if !constraints.CheckHC1(view, in.Profile.ExcludedIngredients) {
				continue
			}
			if !constraints.CheckHC2(view, in.Tracker) {
				continue
			}
			if !constraints.CheckHC3(view, in.Slot) {
				continue
			}
			if !constraints.CheckHC5(view, in.Tracker, in.Profile.MaxDailyCalories) {
				continue
			}
			if in.DayIndex > 0 && !in.IsWorkout {
				if !constraints.CheckHC8(view, in.DayIndex, in.IsWorkout, in.PreviousDayTracker) {
					continue
				}
			}

			consumedCal, consumedProtein, consumedCarbs, consumedFat := 0.0, 0.0, 0.0, 0.0
			var consumedMicro map[string]float64
			if in.Tracker != nil {
				consumedCal = in.Tracker.CaloriesConsumed
				consumedProtein = in.Tracker.ProteinConsumed
				consumedCarbs = in.Tracker.CarbsConsumed
				consumedFat = in.Tracker.FatConsumed
				consumedMicro = in.Tracker.MicronutrientsConsumed
			}

			if !feasibility.CheckFC1(consumedCal+view.Nutrition.Calories, float64(in.Profile.DailyCalories), in.Profile.MaxDailyCalories, in.SlotsRemainingAfter, in.MacroBounds) {
				continue
			}
			if !feasibility.CheckFC2(
				consumedProtein+view.Nutrition.ProteinG, in.Profile.DailyProteinG,
				consumedCarbs+view.Nutrition.CarbsG, in.Profile.DailyCarbsG,
				consumedFat+view.Nutrition.FatG, in.Profile.DailyFatG,
				in.SlotsRemainingAfter, in.MacroBounds,
			) {
				continue
			}
			if !feasibility.CheckFC3(view, consumedMicro, in.Limits) {
				continue
			}

			out = append(out, Variant{RecipeID: recipe.ID, VariantIndex: i, Nutrition: variantNutrition})
		}
	}
	return out
}
