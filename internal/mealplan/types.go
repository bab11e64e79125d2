// Package mealplan defines the data model consumed by the solver: user
// profiles, recipes, schedules, and the running state trackers a search
// mutates as it assigns recipes to meal slots.
package mealplan

// Schedule bounds. A day may have between 1 and 8 meal slots, and a plan
// spans between 1 and 7 days.
const (
	MinSlotsPerDay = 1
	MaxSlotsPerDay = 8
	MinPlanDays    = 1
	MaxPlanDays    = 7
)

// MealSlot is a single meal opportunity on one day of the schedule.
type MealSlot struct {
	Time          string `json:"time"` // "HH:MM"
	BusynessLevel int    `json:"busyness_level"`
	MealType      string `json:"meal_type"`
}

// Ingredient is one line item of a recipe.
type Ingredient struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	IsToTaste bool    `json:"is_to_taste,omitempty"`
}

// Micronutrients tracks the full vocabulary of nutrients that can carry an
// Upper Limit or a weekly target.
type Micronutrients struct {
	VitaminAUg        float64 `json:"vitamin_a_ug"`
	VitaminCMg        float64 `json:"vitamin_c_mg"`
	VitaminDIU        float64 `json:"vitamin_d_iu"`
	VitaminEMg        float64 `json:"vitamin_e_mg"`
	VitaminKUg        float64 `json:"vitamin_k_ug"`
	B1ThiamineMg      float64 `json:"b1_thiamine_mg"`
	B2RiboflavinMg    float64 `json:"b2_riboflavin_mg"`
	B3NiacinMg        float64 `json:"b3_niacin_mg"`
	B5PantothenicMg   float64 `json:"b5_pantothenic_acid_mg"`
	B6PyridoxineMg    float64 `json:"b6_pyridoxine_mg"`
	B12CobalaminUg    float64 `json:"b12_cobalamin_ug"`
	FolateUg          float64 `json:"folate_ug"`
	CalciumMg         float64 `json:"calcium_mg"`
	CopperMg          float64 `json:"copper_mg"`
	IronMg            float64 `json:"iron_mg"`
	MagnesiumMg       float64 `json:"magnesium_mg"`
	ManganeseMg       float64 `json:"manganese_mg"`
	PhosphorusMg      float64 `json:"phosphorus_mg"`
	PotassiumMg       float64 `json:"potassium_mg"`
	SeleniumUg        float64 `json:"selenium_ug"`
	SodiumMg          float64 `json:"sodium_mg"`
	ZincMg            float64 `json:"zinc_mg"`
	FiberG            float64 `json:"fiber_g"`
}

// NutrientFields lists every Micronutrients field name, in the fixed order
// used wherever the solver iterates the vocabulary (UL validation, gap
// analysis, precomputation).
var NutrientFields = []string{
	"vitamin_a_ug", "vitamin_c_mg", "vitamin_d_iu", "vitamin_e_mg", "vitamin_k_ug",
	"b1_thiamine_mg", "b2_riboflavin_mg", "b3_niacin_mg", "b5_pantothenic_acid_mg",
	"b6_pyridoxine_mg", "b12_cobalamin_ug", "folate_ug", "calcium_mg", "copper_mg",
	"iron_mg", "magnesium_mg", "manganese_mg", "phosphorus_mg", "potassium_mg",
	"selenium_ug", "sodium_mg", "zinc_mg", "fiber_g",
}

// Get returns the value of the named field, or 0 if the name is unknown.
func (m Micronutrients) Get(name string) float64 {
	switch name {
	case "vitamin_a_ug":
		return m.VitaminAUg
	case "vitamin_c_mg":
		return m.VitaminCMg
	case "vitamin_d_iu":
		return m.VitaminDIU
	case "vitamin_e_mg":
		return m.VitaminEMg
	case "vitamin_k_ug":
		return m.VitaminKUg
	case "b1_thiamine_mg":
		return m.B1ThiamineMg
	case "b2_riboflavin_mg":
		return m.B2RiboflavinMg
	case "b3_niacin_mg":
		return m.B3NiacinMg
	case "b5_pantothenic_acid_mg":
		return m.B5PantothenicMg
	case "b6_pyridoxine_mg":
		return m.B6PyridoxineMg
	case "b12_cobalamin_ug":
		return m.B12CobalaminUg
	case "folate_ug":
		return m.FolateUg
	case "calcium_mg":
		return m.CalciumMg
	case "copper_mg":
		return m.CopperMg
	case "iron_mg":
		return m.IronMg
	case "magnesium_mg":
		return m.MagnesiumMg
	case "manganese_mg":
		return m.ManganeseMg
	case "phosphorus_mg":
		return m.PhosphorusMg
	case "potassium_mg":
		return m.PotassiumMg
	case "selenium_ug":
		return m.SeleniumUg
	case "sodium_mg":
		return m.SodiumMg
	case "zinc_mg":
		return m.ZincMg
	case "fiber_g":
		return m.FiberG
	default:
		return 0
	}
}

// Set writes value into the named field. Unknown names are ignored.
func (m *Micronutrients) Set(name string, value float64) {
	switch name {
	case "vitamin_a_ug":
		m.VitaminAUg = value
	case "vitamin_c_mg":
		m.VitaminCMg = value
	case "vitamin_d_iu":
		m.VitaminDIU = value
	case "vitamin_e_mg":
		m.VitaminEMg = value
	case "vitamin_k_ug":
		m.VitaminKUg = value
	case "b1_thiamine_mg":
		m.B1ThiamineMg = value
	case "b2_riboflavin_mg":
		m.B2RiboflavinMg = value
	case "b3_niacin_mg":
		m.B3NiacinMg = value
	case "b5_pantothenic_acid_mg":
		m.B5PantothenicMg = value
	case "b6_pyridoxine_mg":
		m.B6PyridoxineMg = value
	case "b12_cobalamin_ug":
		m.B12CobalaminUg = value
	case "folate_ug":
		m.FolateUg = value
	case "calcium_mg":
		m.CalciumMg = value
	case "copper_mg":
		m.CopperMg = value
	case "iron_mg":
		m.IronMg = value
	case "magnesium_mg":
		m.MagnesiumMg = value
	case "manganese_mg":
		m.ManganeseMg = value
	case "phosphorus_mg":
		m.PhosphorusMg = value
	case "potassium_mg":
		m.PotassiumMg = value
	case "selenium_ug":
		m.SeleniumUg = value
	case "sodium_mg":
		m.SodiumMg = value
	case "zinc_mg":
		m.ZincMg = value
	case "fiber_g":
		m.FiberG = value
	}
}

// ToMap converts m to a name->value map, skipping nothing (every field is
// always present, mirroring the source's micronutrient_profile_to_dict).
func (m Micronutrients) ToMap() map[string]float64 {
	out := make(map[string]float64, len(NutrientFields))
	for _, f := range NutrientFields {
		out[f] = m.Get(f)
	}
	return out
}

// FromMap builds a Micronutrients from a name->value map. Missing keys
// default to zero.
func FromMap(m map[string]float64) Micronutrients {
	var out Micronutrients
	for _, f := range NutrientFields {
		out.Set(f, m[f])
	}
	return out
}

// Nutrition is calories, macros, and (optionally tracked) micronutrients for
// a recipe, meal, or running total.
type Nutrition struct {
	Calories       float64        `json:"calories"`
	ProteinG       float64        `json:"protein_g"`
	FatG           float64        `json:"fat_g"`
	CarbsG         float64        `json:"carbs_g"`
	Micronutrients Micronutrients `json:"micronutrients"`
}

// Add returns a+b, summing macros and micronutrients elementwise.
func (a Nutrition) Add(b Nutrition) Nutrition {
	return Nutrition{
		Calories:       a.Calories + b.Calories,
		ProteinG:       a.ProteinG + b.ProteinG,
		FatG:           a.FatG + b.FatG,
		CarbsG:         a.CarbsG + b.CarbsG,
		Micronutrients: addMicro(a.Micronutrients, b.Micronutrients),
	}
}

// Sub returns a-b.
func (a Nutrition) Sub(b Nutrition) Nutrition {
	return Nutrition{
		Calories:       a.Calories - b.Calories,
		ProteinG:       a.ProteinG - b.ProteinG,
		FatG:           a.FatG - b.FatG,
		CarbsG:         a.CarbsG - b.CarbsG,
		Micronutrients: subMicro(a.Micronutrients, b.Micronutrients),
	}
}

func addMicro(a, b Micronutrients) Micronutrients {
	var out Micronutrients
	for _, f := range NutrientFields {
		out.Set(f, a.Get(f)+b.Get(f))
	}
	return out
}

func subMicro(a, b Micronutrients) Micronutrients {
	var out Micronutrients
	for _, f := range NutrientFields {
		out.Set(f, a.Get(f)-b.Get(f))
	}
	return out
}

// Recipe is a candidate meal as consumed by the planner. Nutrition is
// pre-computed by an upstream ingestion pipeline; the solver never derives
// it from ingredients.
type Recipe struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Ingredients         []Ingredient `json:"ingredients"`
	CookingTimeMinutes  int         `json:"cooking_time_minutes"`
	Nutrition           Nutrition   `json:"nutrition"`

	// PrimaryCarbContribution, when non-nil, is the nutrition contributed by
	// the recipe's primary starchy carb source, used only by the optional
	// carb-downscaling feature.
	PrimaryCarbContribution *Nutrition `json:"primary_carb_contribution,omitempty"`
	PrimaryCarbSource       string      `json:"primary_carb_source,omitempty"`
}

// UpperLimits holds the tolerable daily upper intake for each tracked
// micronutrient. A nil pointer field means "no limit established" and is
// never checked.
type UpperLimits struct {
	VitaminAUg      *float64
	VitaminCMg      *float64
	VitaminDIU      *float64
	VitaminEMg      *float64
	VitaminKUg      *float64
	B1ThiamineMg    *float64
	B2RiboflavinMg  *float64
	B3NiacinMg      *float64
	B5PantothenicMg *float64
	B6PyridoxineMg  *float64
	B12CobalaminUg  *float64
	FolateUg        *float64
	CalciumMg       *float64
	CopperMg        *float64
	IronMg          *float64
	MagnesiumMg     *float64
	ManganeseMg     *float64
	PhosphorusMg    *float64
	PotassiumMg     *float64
	SeleniumUg      *float64
	SodiumMg        *float64
	ZincMg          *float64
	FiberG          *float64
}

// Get returns the limit for the named field and whether one is established.
func (u UpperLimits) Get(name string) (float64, bool) {
	var p *float64
	switch name {
	case "vitamin_a_ug":
		p = u.VitaminAUg
	case "vitamin_c_mg":
		p = u.VitaminCMg
	case "vitamin_d_iu":
		p = u.VitaminDIU
	case "vitamin_e_mg":
		p = u.VitaminEMg
	case "vitamin_k_ug":
		p = u.VitaminKUg
	case "b1_thiamine_mg":
		p = u.B1ThiamineMg
	case "b2_riboflavin_mg":
		p = u.B2RiboflavinMg
	case "b3_niacin_mg":
		p = u.B3NiacinMg
	case "b5_pantothenic_acid_mg":
		p = u.B5PantothenicMg
	case "b6_pyridoxine_mg":
		p = u.B6PyridoxineMg
	case "b12_cobalamin_ug":
		p = u.B12CobalaminUg
	case "folate_ug":
		p = u.FolateUg
	case "calcium_mg":
		p = u.CalciumMg
	case "copper_mg":
		p = u.CopperMg
	case "iron_mg":
		p = u.IronMg
	case "magnesium_mg":
		p = u.MagnesiumMg
	case "manganese_mg":
		p = u.ManganeseMg
	case "phosphorus_mg":
		p = u.PhosphorusMg
	case "potassium_mg":
		p = u.PotassiumMg
	case "selenium_ug":
		p = u.SeleniumUg
	case "sodium_mg":
		p = u.SodiumMg
	case "zinc_mg":
		p = u.ZincMg
	case "fiber_g":
		p = u.FiberG
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set writes a limit for the named field. Unknown names are ignored.
func (u *UpperLimits) Set(name string, value *float64) {
	switch name {
	case "vitamin_a_ug":
		u.VitaminAUg = value
	case "vitamin_c_mg":
		u.VitaminCMg = value
	case "vitamin_d_iu":
		u.VitaminDIU = value
	case "vitamin_e_mg":
		u.VitaminEMg = value
	case "vitamin_k_ug":
		u.VitaminKUg = value
	case "b1_thiamine_mg":
		u.B1ThiamineMg = value
	case "b2_riboflavin_mg":
		u.B2RiboflavinMg = value
	case "b3_niacin_mg":
		u.B3NiacinMg = value
	case "b5_pantothenic_acid_mg":
		u.B5PantothenicMg = value
	case "b6_pyridoxine_mg":
		u.B6PyridoxineMg = value
	case "b12_cobalamin_ug":
		u.B12CobalaminUg = value
	case "folate_ug":
		u.FolateUg = value
	case "calcium_mg":
		u.CalciumMg = value
	case "copper_mg":
		u.CopperMg = value
	case "iron_mg":
		u.IronMg = value
	case "magnesium_mg":
		u.MagnesiumMg = value
	case "manganese_mg":
		u.ManganeseMg = value
	case "phosphorus_mg":
		u.PhosphorusMg = value
	case "potassium_mg":
		u.PotassiumMg = value
	case "selenium_ug":
		u.SeleniumUg = value
	case "sodium_mg":
		u.SodiumMg = value
	case "zinc_mg":
		u.ZincMg = value
	case "fiber_g":
		u.FiberG = value
	}
}

// FatRange is a (min, max) grams bound on daily fat.
type FatRange struct {
	Min float64
	Max float64
}

// SlotKey identifies a decision point by zero-based day and slot index.
type SlotKey struct {
	Day  int
	Slot int
}

// UserProfile is the complete set of inputs describing what a plan must
// satisfy for one user across the planning horizon.
type UserProfile struct {
	DailyCalories     int
	DailyProteinG     float64
	DailyFatG         FatRange
	DailyCarbsG       float64
	MaxDailyCalories  *int
	Schedule          [][]MealSlot
	ExcludedIngredients []string
	LikedFoods        []string
	Demographic       string
	UpperLimitOverrides map[string]*float64
	PinnedAssignments map[SlotKey]string
	MicronutrientTargets map[string]float64
	ActivitySchedule  map[string]string

	EnablePrimaryCarbDownscaling bool
	MaxScalingSteps              int
	ScalingStepFraction          float64
}

// Assignment is one (day, slot, recipe) decision. VariantIndex is non-zero
// only when the recipe placed is a carb-downscaled variant of the base
// recipe named by RecipeID.
type Assignment struct {
	Day          int
	Slot         int
	RecipeID     string
	VariantIndex int
}

// DailyTracker is the running nutritional and usage state for one day of
// the plan, mutated as slots on that day are filled.
type DailyTracker struct {
	CaloriesConsumed      float64
	ProteinConsumed       float64
	FatConsumed           float64
	CarbsConsumed         float64
	MicronutrientsConsumed map[string]float64
	UsedRecipeIDs         map[string]bool
	NonWorkoutRecipeIDs   map[string]bool
	SlotsAssigned         int
	SlotsTotal            int
}

// Clone returns a deep copy of t.
func (t DailyTracker) Clone() DailyTracker {
	micro := make(map[string]float64, len(t.MicronutrientsConsumed))
	for k, v := range t.MicronutrientsConsumed {
		micro[k] = v
	}
	used := make(map[string]bool, len(t.UsedRecipeIDs))
	for k, v := range t.UsedRecipeIDs {
		used[k] = v
	}
	nonWorkout := make(map[string]bool, len(t.NonWorkoutRecipeIDs))
	for k, v := range t.NonWorkoutRecipeIDs {
		nonWorkout[k] = v
	}
	return DailyTracker{
		CaloriesConsumed:       t.CaloriesConsumed,
		ProteinConsumed:        t.ProteinConsumed,
		FatConsumed:            t.FatConsumed,
		CarbsConsumed:          t.CarbsConsumed,
		MicronutrientsConsumed: micro,
		UsedRecipeIDs:          used,
		NonWorkoutRecipeIDs:    nonWorkout,
		SlotsAssigned:          t.SlotsAssigned,
		SlotsTotal:             t.SlotsTotal,
	}
}

// NewDailyTracker returns a zeroed tracker for a day with slotsTotal slots.
func NewDailyTracker(slotsTotal int) DailyTracker {
	return DailyTracker{
		MicronutrientsConsumed: map[string]float64{},
		UsedRecipeIDs:          map[string]bool{},
		NonWorkoutRecipeIDs:    map[string]bool{},
		SlotsTotal:             slotsTotal,
	}
}

// WeeklyTracker is the running state accumulated across completed days.
type WeeklyTracker struct {
	WeeklyTotals    Nutrition
	DaysCompleted   int
	DaysRemaining   int
	CarryoverNeeds  map[string]float64
}
