package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

func recipe(id string, calories, protein, fat, carbs float64) mealplan.Recipe {
	return mealplan.Recipe{
		ID:                 id,
		CookingTimeMinutes: 10,
		Nutrition:          mealplan.Nutrition{Calories: calories, ProteinG: protein, FatG: fat, CarbsG: carbs},
	}
}

func twoSlotDaySchedule() [][]mealplan.MealSlot {
	return [][]mealplan.MealSlot{
		{{Time: "08:00", BusynessLevel: 3}, {Time: "13:00", BusynessLevel: 3}},
	}
}

func TestRunSucceedsSingleDayTwoSlots(t *testing.T) {
	pool := []mealplan.Recipe{
		recipe("r1", 500, 30, 20, 50),
		recipe("r2", 500, 30, 20, 50),
	}
	profile := mealplan.UserProfile{
		DailyCalories: 1000,
		DailyProteinG: 60,
		DailyCarbsG:   100,
		DailyFatG:     mealplan.FatRange{Min: 20, Max: 60},
		Schedule:      twoSlotDaySchedule(),
	}

	res := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{})
	require.True(t, res.Success, "%+v", res.Failure)
	require.NotNil(t, res.Plan)
	assert.Len(t, res.Plan.Assignments, 2)
	assert.ElementsMatch(t, []string{"r1", "r2"}, []string{res.Plan.Assignments[0].RecipeID, res.Plan.Assignments[1].RecipeID})
}

func TestRunSucceedsMultiDayDistinctRecipePerDay(t *testing.T) {
	pool := []mealplan.Recipe{
		recipe("r1", 600, 40, 20, 60),
		recipe("r2", 600, 40, 20, 60),
	}
	profile := mealplan.UserProfile{
		DailyCalories: 600,
		DailyProteinG: 40,
		DailyCarbsG:   60,
		DailyFatG:     mealplan.FatRange{Min: 20, Max: 20},
		Schedule: [][]mealplan.MealSlot{
			{{Time: "13:00", BusynessLevel: 3}},
			{{Time: "13:00", BusynessLevel: 3}},
		},
	}

	res := Run(profile, pool, 2, mealplan.UpperLimits{}, Config{})
	require.True(t, res.Success, "%+v", res.Failure)
	require.NotNil(t, res.Plan)
	require.Len(t, res.Plan.Assignments, 2)
	assert.NotEqual(t, res.Plan.Assignments[0].RecipeID, res.Plan.Assignments[1].RecipeID,
		"HC-8 forbids reusing the same non-workout recipe on consecutive days")
}

func TestRunIsDeterministic(t *testing.T) {
	pool := []mealplan.Recipe{
		recipe("r1", 500, 30, 20, 50),
		recipe("r2", 500, 30, 20, 50),
	}
	profile := mealplan.UserProfile{
		DailyCalories: 1000,
		DailyProteinG: 60,
		DailyCarbsG:   100,
		DailyFatG:     mealplan.FatRange{Min: 20, Max: 60},
		Schedule:      twoSlotDaySchedule(),
	}

	first := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{})
	second := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{})
	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, first.Plan.Assignments, second.Plan.Assignments)
	assert.Equal(t, first.Stats.TotalAttempts, second.Stats.TotalAttempts)
}

func TestRunSucceedsWithPinnedAssignment(t *testing.T) {
	pool := []mealplan.Recipe{recipe("pinned-r", 600, 40, 20, 60)}
	profile := mealplan.UserProfile{
		DailyCalories:     600,
		DailyProteinG:     40,
		DailyCarbsG:       60,
		DailyFatG:         mealplan.FatRange{Min: 20, Max: 20},
		Schedule:          [][]mealplan.MealSlot{{{Time: "13:00", BusynessLevel: 3}}},
		PinnedAssignments: map[mealplan.SlotKey]string{{Day: 0, Slot: 0}: "pinned-r"},
	}

	res := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{})
	require.True(t, res.Success, "%+v", res.Failure)
	require.Len(t, res.Plan.Assignments, 1)
	assert.Equal(t, "pinned-r", res.Plan.Assignments[0].RecipeID)
}

func TestRunFM3OnScheduleLengthMismatch(t *testing.T) {
	profile := mealplan.UserProfile{Schedule: [][]mealplan.MealSlot{{{Time: "13:00", BusynessLevel: 3}}}}
	res := Run(profile, nil, 2, mealplan.UpperLimits{}, Config{})
	require.False(t, res.Success)
	assert.Equal(t, "FM-3", res.Failure.FailureMode)
}

func TestRunFM3OnInvalidPinnedAssignment(t *testing.T) {
	pool := []mealplan.Recipe{{ID: "r1", Ingredients: []mealplan.Ingredient{{Name: "peanuts"}}}}
	profile := mealplan.UserProfile{
		Schedule:            [][]mealplan.MealSlot{{{Time: "13:00", BusynessLevel: 3}}},
		ExcludedIngredients: []string{"peanuts"},
		PinnedAssignments:   map[mealplan.SlotKey]string{{Day: 0, Slot: 0}: "r1"},
	}
	res := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{})
	require.False(t, res.Success)
	assert.Equal(t, "FM-3", res.Failure.FailureMode)
	assert.Equal(t, "HC-1", res.Failure.ConstraintDetail)
}

func TestRunFM1WhenFirstSlotStrandsASiblingSlot(t *testing.T) {
	// A single recipe in the whole pool means committing it to slot 0 leaves
	// slot 1 with zero eligible candidates (HC-2), and there is no earlier
	// slot to backtrack into.
	pool := []mealplan.Recipe{recipe("only", 600, 40, 20, 60)}
	profile := mealplan.UserProfile{
		DailyCalories: 1200,
		DailyProteinG: 80,
		DailyCarbsG:   120,
		DailyFatG:     mealplan.FatRange{Min: 20, Max: 60},
		Schedule:      twoSlotDaySchedule(),
	}
	res := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{})
	require.False(t, res.Success)
	assert.Equal(t, "FM-1", res.Failure.FailureMode)
	require.NotNil(t, res.Failure.DayIndex)
	assert.Equal(t, 0, *res.Failure.DayIndex)
}

func TestRunFM4OnIrrecoverableWeeklyDeficit(t *testing.T) {
	r := recipe("r1", 600, 40, 20, 60)
	r.Nutrition.Micronutrients.IronMg = 1
	pool := []mealplan.Recipe{r}
	profile := mealplan.UserProfile{
		DailyCalories:        600,
		DailyProteinG:        40,
		DailyCarbsG:          60,
		DailyFatG:            mealplan.FatRange{Min: 20, Max: 20},
		MicronutrientTargets: map[string]float64{"iron_mg": 1000},
		Schedule: [][]mealplan.MealSlot{
			{{Time: "13:00", BusynessLevel: 3}},
			{{Time: "13:00", BusynessLevel: 3}},
		},
	}
	res := Run(profile, pool, 2, mealplan.UpperLimits{}, Config{})
	require.False(t, res.Success)
	assert.Equal(t, "FM-4", res.Failure.FailureMode)
	require.NotNil(t, res.Failure.DayIndex)
	assert.Equal(t, 1, *res.Failure.DayIndex)
}

func TestRunFM5OnAttemptLimitExhaustion(t *testing.T) {
	pool := []mealplan.Recipe{
		recipe("r1", 500, 30, 20, 50),
		recipe("r2", 500, 30, 20, 50),
	}
	profile := mealplan.UserProfile{
		DailyCalories: 1000,
		DailyProteinG: 60,
		DailyCarbsG:   100,
		DailyFatG:     mealplan.FatRange{Min: 20, Max: 60},
		Schedule:      twoSlotDaySchedule(),
	}
	res := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{AttemptLimit: 1})
	require.False(t, res.Success)
	assert.Equal(t, "FM-5", res.Failure.FailureMode)
}

type recordingSink struct {
	attempts   []mealplan.SlotKey
	backtracks []int
	days       []int
}

func (s *recordingSink) OnAttempt(key mealplan.SlotKey)           { s.attempts = append(s.attempts, key) }
func (s *recordingSink) OnBacktrack(depth int)                    { s.backtracks = append(s.backtracks, depth) }
func (s *recordingSink) OnDayComplete(day int, _ time.Duration)   { s.days = append(s.days, day) }

func TestRunNotifiesSinkWithoutAffectingOutcome(t *testing.T) {
	pool := []mealplan.Recipe{
		recipe("r1", 500, 30, 20, 50),
		recipe("r2", 500, 30, 20, 50),
	}
	profile := mealplan.UserProfile{
		DailyCalories: 1000,
		DailyProteinG: 60,
		DailyCarbsG:   100,
		DailyFatG:     mealplan.FatRange{Min: 20, Max: 60},
		Schedule:      twoSlotDaySchedule(),
	}

	plain := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{})
	sink := &recordingSink{}
	withSink := Run(profile, pool, 1, mealplan.UpperLimits{}, Config{Sink: sink})

	require.True(t, plain.Success)
	require.True(t, withSink.Success)
	assert.Equal(t, plain.Plan.Assignments, withSink.Plan.Assignments)
	assert.NotEmpty(t, sink.attempts)
	assert.NotEmpty(t, sink.days)
}
