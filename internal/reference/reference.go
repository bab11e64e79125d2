// Package reference loads the static JSON reference tables the solver
// consults: per-demographic Upper Limits and the scalable-carb-source name
// list, then resolves a user's final Upper Limits by merging the
// demographic reference with their explicit overrides.
package reference

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nutriplan/mealsolver/internal/mealplan"
)

// DefaultULReferencePath is the conventional location of the
// per-demographic Upper Limits reference table.
const DefaultULReferencePath = "data/reference/ul_by_demographic.json"

// ULLoader loads and caches Upper Limits reference data keyed by
// demographic.
type ULLoader struct {
	path string
	data map[string]map[string]*float64
}

// NewULLoader returns a loader for the reference file at path. The file is
// not read until the first call to LoadForDemographic or
// AvailableDemographics.
func NewULLoader(path string) *ULLoader {
	return &ULLoader{path: path}
}

type ulReferenceFile struct {
	Demographics map[string]map[string]*float64 `json:"demographics"`
}

func (l *ULLoader) load() error {
	if l.data != nil {
		return nil
	}
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("reading upper limits reference %s: %w", l.path, err)
	}
	var parsed ulReferenceFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parsing upper limits reference %s: %w", l.path, err)
	}
	l.data = parsed.Demographics
	return nil
}

// LoadForDemographic returns the Upper Limits for demographic. Fields
// absent from the reference file, or present with a JSON null, both mean
// "no limit established" and leave the corresponding field nil.
func (l *ULLoader) LoadForDemographic(demographic string) (mealplan.UpperLimits, error) {
	if err := l.load(); err != nil {
		return mealplan.UpperLimits{}, err
	}
	values, ok := l.data[demographic]
	if !ok {
		return mealplan.UpperLimits{}, fmt.Errorf("demographic %q not found in upper limits reference %s", demographic, l.path)
	}
	var out mealplan.UpperLimits
	for _, f := range mealplan.NutrientFields {
		out.Set(f, values[f])
	}
	return out, nil
}

// AvailableDemographics returns every demographic key present in the
// reference data.
func (l *ULLoader) AvailableDemographics() ([]string, error) {
	if err := l.load(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(l.data))
	for k := range l.data {
		out = append(out, k)
	}
	return out, nil
}

// ResolveUpperLimits merges the demographic reference with user overrides.
// A nil override value is ignored (the reference value is kept); a
// non-nil override always replaces the reference value, including
// relaxing it upward. Override keys naming a field mealplan.UpperLimits
// does not have are silently ignored.
func ResolveUpperLimits(loader *ULLoader, demographic string, overrides map[string]*float64) (mealplan.UpperLimits, error) {
	reference, err := loader.LoadForDemographic(demographic)
	if err != nil {
		return mealplan.UpperLimits{}, err
	}
	if len(overrides) == 0 {
		return reference, nil
	}
	for _, f := range mealplan.NutrientFields {
		override, ok := overrides[f]
		if !ok || override == nil {
			continue
		}
		reference.Set(f, override)
	}
	return reference, nil
}

// ULViolation is one micronutrient whose daily intake exceeded its Upper
// Limit.
type ULViolation struct {
	Nutrient string
	Actual   float64
	Limit    float64
	Excess   float64
}

// ValidateDailyUpperLimits checks daily micronutrient intake against
// limits, in the fixed NutrientFields order. Intake exactly at the limit
// passes; only strictly-over counts as a violation.
func ValidateDailyUpperLimits(daily mealplan.Micronutrients, limits mealplan.UpperLimits) []ULViolation {
	var violations []ULViolation
	for _, f := range mealplan.NutrientFields {
		limit, ok := limits.Get(f)
		if !ok {
			continue
		}
		actual := daily.Get(f)
		if actual > limit {
			violations = append(violations, ULViolation{Nutrient: f, Actual: actual, Limit: limit, Excess: actual - limit})
		}
	}
	return violations
}

// ScalableSources is the reference list of ingredient names eligible for
// primary-carb downscaling.
type ScalableSources struct {
	RiceVariants   []string `json:"rice_variants"`
	PotatoVariants []string `json:"potato_variants"`
}

// LoadScalableSources reads and parses the scalable-carb-source reference
// file at path.
func LoadScalableSources(path string) (ScalableSources, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ScalableSources{}, fmt.Errorf("reading scalable carb sources %s: %w", path, err)
	}
	var out ScalableSources
	if err := json.Unmarshal(raw, &out); err != nil {
		return ScalableSources{}, fmt.Errorf("parsing scalable carb sources %s: %w", path, err)
	}
	return out, nil
}
