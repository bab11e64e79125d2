package feasibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

func pool() []mealplan.Recipe {
	return []mealplan.Recipe{
		{ID: "r1", Nutrition: mealplan.Nutrition{Calories: 200, ProteinG: 10, FatG: 5, CarbsG: 20}},
		{ID: "r2", Nutrition: mealplan.Nutrition{Calories: 400, ProteinG: 30, FatG: 15, CarbsG: 40}},
		{ID: "r3", Nutrition: mealplan.Nutrition{Calories: 600, ProteinG: 50, FatG: 25, CarbsG: 60}},
	}
}

func TestPrecomputeMacroBoundsMinMax(t *testing.T) {
	b := PrecomputeMacroBounds(pool(), 3)

	assert.Equal(t, 200.0, b.CaloriesMin[1])
	assert.Equal(t, 600.0, b.CaloriesMax[1])
	assert.Equal(t, 600.0, b.CaloriesMin[2], "cheapest two: 200+400")
	assert.Equal(t, 1000.0, b.CaloriesMax[2], "priciest two: 400+600")
	assert.Equal(t, 1200.0, b.CaloriesMin[3])
	assert.Equal(t, 1200.0, b.CaloriesMax[3], "with only 3 recipes, M=3 has exactly one combination")
}

func TestPrecomputeMacroBoundsClampsToPoolSize(t *testing.T) {
	b := PrecomputeMacroBounds(pool(), 5)
	assert.Equal(t, 1200.0, b.CaloriesMin[5], "M beyond pool size falls back to the full sum")
	assert.Equal(t, 1200.0, b.CaloriesMax[5])
}

func TestCheckFC1RespectsCeilingAndBand(t *testing.T) {
	bounds := PrecomputeMacroBounds(pool(), 3)
	ceiling := 900
	assert.False(t, CheckFC1(950, 2000, &ceiling, 1, bounds), "already over the hard ceiling")
	assert.True(t, CheckFC1(1500, 2000, nil, 1, bounds), "one slot left can still land near target 2000")
}

func TestCheckFC1ZeroSlotsRemainingMustBeInBand(t *testing.T) {
	bounds := MacroBounds{}
	assert.True(t, CheckFC1(1950, 2000, nil, 0, bounds), "within 10% of 2000")
	assert.False(t, CheckFC1(1500, 2000, nil, 0, bounds), "25% under target with no slots left to fix it")
}

func TestCheckFC2FatRangeIsAbsoluteNotTolerance(t *testing.T) {
	bounds := PrecomputeMacroBounds(pool(), 3)
	fatRange := mealplan.FatRange{Min: 40, Max: 80}

	assert.True(t, CheckFC2(100, 100, 100, 100, 50, fatRange, 0, bounds), "50 already sits in [40,80] with no slots left")
	assert.False(t, CheckFC2(100, 100, 100, 100, 10, fatRange, 0, bounds), "10 is below the minimum with no slots left to add fat")
}

func TestCheckFC3UpperLimits(t *testing.T) {
	limit := 50.0
	limits := mealplan.UpperLimits{VitaminCMg: &limit}
	r := mealplan.Recipe{Nutrition: mealplan.Nutrition{Micronutrients: mealplan.Micronutrients{VitaminCMg: 20}}}

	assert.True(t, CheckFC3(r, map[string]float64{"vitamin_c_mg": 20}, limits), "20+20=40 <= 50")
	assert.False(t, CheckFC3(r, map[string]float64{"vitamin_c_mg": 40}, limits), "40+20=60 > 50")
}

func TestCheckFC4WeeklyDeficitRecoverability(t *testing.T) {
	maxDaily := map[string]map[int]float64{"iron_mg": {1: 10, 2: 18}}

	assert.True(t, CheckFC4(0, 3, 5, map[string]float64{"iron_mg": 20}, nil, maxDaily, 2), "day 0 is always exempt")

	// planDays=5, dailyRDI=20 -> total needed 100. weekly consumed 0 -> deficit 100.
	// daysLeft=3, max achievable per day at slotCount=2 is 18 -> 3*18=54 < 100 -> infeasible.
	assert.False(t, CheckFC4(2, 3, 5, map[string]float64{"iron_mg": 20}, map[string]float64{"iron_mg": 0}, maxDaily, 2))

	// Same shape but weekly consumed already covers most of the need.
	assert.True(t, CheckFC4(2, 3, 5, map[string]float64{"iron_mg": 20}, map[string]float64{"iron_mg": 90}, maxDaily, 2))
}

func TestCheckFC5FutureSlotEligibility(t *testing.T) {
	candidates := map[string]bool{"r1": true, "r2": true}
	usedToday := map[string]bool{}
	future := []map[string]bool{{"r2": true}}

	assert.True(t, CheckFC5(candidates, "r1", usedToday, future), "r2 remains eligible for the future slot")
	assert.False(t, CheckFC5(candidates, "r2", usedToday, future), "placing r2 now leaves the future slot with no eligible recipe")
	assert.False(t, CheckFC5(map[string]bool{}, "r1", usedToday, future), "no candidates at all fails immediately")
}
