package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

func TestOrderScoredCandidatesByScoreDescending(t *testing.T) {
	candidates := []ScoredCandidate{
		{Recipe: mealplan.Recipe{ID: "low"}, Score: 10},
		{Recipe: mealplan.Recipe{ID: "high"}, Score: 90},
		{Recipe: mealplan.Recipe{ID: "mid"}, Score: 50},
	}
	ordered := OrderScoredCandidates(candidates, OrderContext{})
	got := []string{ordered[0].Recipe.ID, ordered[1].Recipe.ID, ordered[2].Recipe.ID}
	assert.Equal(t, []string{"high", "mid", "low"}, got)
}

func TestOrderScoredCandidatesTieBreaksByGapFillThenID(t *testing.T) {
	fillsGap := mealplan.Recipe{ID: "b", Nutrition: mealplan.Nutrition{Micronutrients: mealplan.Micronutrients{IronMg: 10}}}
	doesNotFill := mealplan.Recipe{ID: "a", Nutrition: mealplan.Nutrition{}}

	candidates := []ScoredCandidate{
		{Recipe: doesNotFill, Score: 50},
		{Recipe: fillsGap, Score: 50},
	}
	ctx := OrderContext{Tracked: map[string]float64{"iron_mg": 18}, DaysRemaining: 1}
	ordered := OrderScoredCandidates(candidates, ctx)
	assert.Equal(t, "b", ordered[0].Recipe.ID, "equal score, higher gap-fill count wins")
	assert.Equal(t, "a", ordered[1].Recipe.ID)
}

func TestOrderScoredCandidatesFinalTieBreakIsRecipeID(t *testing.T) {
	candidates := []ScoredCandidate{
		{Recipe: mealplan.Recipe{ID: "zeta"}, Score: 50},
		{Recipe: mealplan.Recipe{ID: "alpha"}, Score: 50},
	}
	ordered := OrderScoredCandidates(candidates, OrderContext{})
	assert.Equal(t, "alpha", ordered[0].Recipe.ID, "fully tied candidates order by ascending recipe id")
	assert.Equal(t, "zeta", ordered[1].Recipe.ID)
}

func TestLikedFoodsCountCaseInsensitive(t *testing.T) {
	r := mealplan.Recipe{Ingredients: []mealplan.Ingredient{{Name: "Salmon"}, {Name: "rice"}}}
	assert.Equal(t, 1, LikedFoodsCount(r, []string{"salmon"}))
	assert.Equal(t, 0, LikedFoodsCount(r, nil))
}

func TestStillNeededOmitsMetNutrients(t *testing.T) {
	tracked := map[string]float64{"iron_mg": 18, "vitamin_c_mg": 90}
	consumed := map[string]float64{"iron_mg": 18, "vitamin_c_mg": 10}
	gaps := StillNeeded(tracked, nil, consumed, 1)
	assert.NotContains(t, gaps, "iron_mg", "iron target already met")
	assert.Equal(t, 80.0, gaps["vitamin_c_mg"])
}

func TestDeficitReductionCapsContributionPerNutrient(t *testing.T) {
	gaps := map[string]float64{"iron_mg": 5}
	overfills := mealplan.Recipe{Nutrition: mealplan.Nutrition{Micronutrients: mealplan.Micronutrients{IronMg: 50}}}
	assert.Equal(t, 1.0, DeficitReduction(overfills, gaps), "a single nutrient's contribution never exceeds 1.0")
}
