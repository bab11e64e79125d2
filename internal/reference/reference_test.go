package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

func writeULFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ul.json")
	contents := `{
		"demographics": {
			"adult_male": {
				"vitamin_a_ug": 3000,
				"sodium_mg": null,
				"iron_mg": 45
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestULLoaderLoadForDemographicFound(t *testing.T) {
	loader := NewULLoader(writeULFile(t))
	limits, err := loader.LoadForDemographic("adult_male")
	require.NoError(t, err)

	v, ok := limits.Get("vitamin_a_ug")
	require.True(t, ok)
	assert.Equal(t, 3000.0, v)

	_, ok = limits.Get("sodium_mg")
	assert.False(t, ok, "an explicit JSON null means no limit established")

	_, ok = limits.Get("potassium_mg")
	assert.False(t, ok, "a field absent from the reference file also means no limit")
}

func TestULLoaderLoadForDemographicNotFound(t *testing.T) {
	loader := NewULLoader(writeULFile(t))
	_, err := loader.LoadForDemographic("teenager")
	assert.Error(t, err)
}

func TestULLoaderCachesAfterFirstLoad(t *testing.T) {
	path := writeULFile(t)
	loader := NewULLoader(path)
	_, err := loader.LoadForDemographic("adult_male")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = loader.LoadForDemographic("adult_male")
	assert.NoError(t, err, "a second call must not re-read the now-deleted file")
}

func TestULLoaderAvailableDemographics(t *testing.T) {
	loader := NewULLoader(writeULFile(t))
	demographics, err := loader.AvailableDemographics()
	require.NoError(t, err)
	assert.Equal(t, []string{"adult_male"}, demographics)
}

func TestResolveUpperLimitsOverridesTakePrecedence(t *testing.T) {
	loader := NewULLoader(writeULFile(t))
	relaxed := 5000.0
	overrides := map[string]*float64{
		"vitamin_a_ug": &relaxed,
		"iron_mg":      nil,
		"not_a_field":  &relaxed,
	}

	limits, err := ResolveUpperLimits(loader, "adult_male", overrides)
	require.NoError(t, err)

	v, _ := limits.Get("vitamin_a_ug")
	assert.Equal(t, 5000.0, v, "a non-nil override replaces the reference value, even upward")

	iron, ok := limits.Get("iron_mg")
	require.True(t, ok)
	assert.Equal(t, 45.0, iron, "a nil override leaves the reference value untouched")
}

func TestResolveUpperLimitsNoOverridesReturnsReferenceUnchanged(t *testing.T) {
	loader := NewULLoader(writeULFile(t))
	limits, err := ResolveUpperLimits(loader, "adult_male", nil)
	require.NoError(t, err)
	v, _ := limits.Get("vitamin_a_ug")
	assert.Equal(t, 3000.0, v)
}

func TestValidateDailyUpperLimitsOnlyStrictlyOverCounts(t *testing.T) {
	limit := 45.0
	limits := mealplan.UpperLimits{IronMg: &limit}

	atLimit := mealplan.Micronutrients{IronMg: 45}
	assert.Empty(t, ValidateDailyUpperLimits(atLimit, limits), "exactly at the limit passes")

	overLimit := mealplan.Micronutrients{IronMg: 45.5}
	violations := ValidateDailyUpperLimits(overLimit, limits)
	require.Len(t, violations, 1)
	assert.Equal(t, "iron_mg", violations[0].Nutrient)
	assert.InDelta(t, 0.5, violations[0].Excess, 1e-9)
}

func TestLoadScalableSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	contents := `{"rice_variants": ["white rice", "brown rice"], "potato_variants": ["russet potato"]}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	sources, err := LoadScalableSources(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"white rice", "brown rice"}, sources.RiceVariants)
	assert.ElementsMatch(t, []string{"russet potato"}, sources.PotatoVariants)
}

func TestLoadScalableSourcesMissingFile(t *testing.T) {
	_, err := LoadScalableSources(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
