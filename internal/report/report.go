// Package report builds JSON-serializable diagnostics from a search
// outcome: the canonical MealPlanResult schema, structured FM-1..FM-5
// reports, and the sodium advisory. It never re-runs or second-guesses the
// search; it only renders the Result it is handed.
package report

import (
	"sort"

	"github.com/nutriplan/mealsolver/internal/mealplan"
	"github.com/nutriplan/mealsolver/internal/search"
)

// AssignmentDict is the JSON-serializable shape of an Assignment.
type AssignmentDict struct {
	Day          int    `json:"day_index"`
	Slot         int    `json:"slot_index"`
	RecipeID     string `json:"recipe_id"`
	VariantIndex int    `json:"variant_index,omitempty"`
}

// AssignmentToDict renders a as its JSON-serializable shape.
func AssignmentToDict(a mealplan.Assignment) AssignmentDict {
	return AssignmentDict{Day: a.Day, Slot: a.Slot, RecipeID: a.RecipeID, VariantIndex: a.VariantIndex}
}

// DailyTrackerSummary is the JSON-serializable shape of a DailyTracker.
type DailyTrackerSummary struct {
	CaloriesConsumed float64 `json:"calories_consumed"`
	ProteinConsumed  float64 `json:"protein_consumed"`
	FatConsumed      float64 `json:"fat_consumed"`
	CarbsConsumed    float64 `json:"carbs_consumed"`
	SlotsAssigned    int     `json:"slots_assigned"`
	SlotsTotal       int     `json:"slots_total"`
}

// DailyTrackerToDict renders t as its JSON-serializable summary.
func DailyTrackerToDict(t mealplan.DailyTracker) DailyTrackerSummary {
	return DailyTrackerSummary{
		CaloriesConsumed: t.CaloriesConsumed,
		ProteinConsumed:  t.ProteinConsumed,
		FatConsumed:      t.FatConsumed,
		CarbsConsumed:    t.CarbsConsumed,
		SlotsAssigned:    t.SlotsAssigned,
		SlotsTotal:       t.SlotsTotal,
	}
}

// PlanSnapshot is the closest/best partial plan attached to FM-2 and FM-5
// reports.
type PlanSnapshot struct {
	Assignments   []AssignmentDict               `json:"assignments"`
	DailyTrackers map[string]DailyTrackerSummary `json:"daily_trackers"`
}

// BuildPlanSnapshot renders assignments/dailyTrackers as a PlanSnapshot,
// with days emitted in ascending order.
func BuildPlanSnapshot(assignments []mealplan.Assignment, dailyTrackers map[int]mealplan.DailyTracker) PlanSnapshot {
	dicts := make([]AssignmentDict, len(assignments))
	for i, a := range assignments {
		dicts[i] = AssignmentToDict(a)
	}
	days := make([]int, 0, len(dailyTrackers))
	for d := range dailyTrackers {
		days = append(days, d)
	}
	sort.Ints(days)
	trackers := make(map[string]DailyTrackerSummary, len(days))
	for _, d := range days {
		trackers[itoa(d)] = DailyTrackerToDict(dailyTrackers[d])
	}
	return PlanSnapshot{Assignments: dicts, DailyTrackers: trackers}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// UnfillableSlot describes one decision point candidate generation could
// not fill.
type UnfillableSlot struct {
	Day                  int      `json:"day"`
	SlotIndex            int      `json:"slot_index"`
	EligibleRecipeCount  int      `json:"eligible_recipe_count"`
	BlockingConstraints  []string `json:"blocking_constraints"`
}

// ReportFM1 is the structured diagnostic for FM-1 (unfillable slot).
type ReportFM1 struct {
	UnfillableSlots []UnfillableSlot `json:"unfillable_slots"`
}

// BuildReportFM1 builds the FM-1 diagnostic.
func BuildReportFM1(dayIndex, slotIndex int, constraintDetail string, eligibleRecipeCount int) ReportFM1 {
	blocking := []string{}
	if constraintDetail != "" {
		blocking = append(blocking, constraintDetail)
	}
	return ReportFM1{UnfillableSlots: []UnfillableSlot{{
		Day: dayIndex, SlotIndex: slotIndex, EligibleRecipeCount: eligibleRecipeCount, BlockingConstraints: blocking,
	}}}
}

// FailedDay is one day's diagnostic within an FM-2 report.
type FailedDay struct {
	Day              int            `json:"day"`
	MacroViolations  map[string]any `json:"macro_violations"`
	ULViolations     map[string]any `json:"ul_violations"`
	ConstraintDetail string         `json:"constraint_detail"`
}

// ReportFM2 is the structured diagnostic for FM-2 (daily infeasibility).
type ReportFM2 struct {
	FailedDays  []FailedDay   `json:"failed_days"`
	ClosestPlan *PlanSnapshot `json:"closest_plan"`
}

// BuildReportFM2 builds the FM-2 diagnostic. hasDay false means "no specific
// day" (the cursor-exhaustion and loop-exit fallback cases, where the search
// never identifies a single offending day); dayIndex is then ignored.
func BuildReportFM2(dayIndex int, hasDay bool, constraintDetail string, closestPlan PlanSnapshot) ReportFM2 {
	var failed []FailedDay
	if hasDay {
		failed = append(failed, FailedDay{
			Day:              dayIndex,
			MacroViolations:  map[string]any{},
			ULViolations:     map[string]any{},
			ConstraintDetail: constraintDetail,
		})
	}
	return ReportFM2{FailedDays: failed, ClosestPlan: &closestPlan}
}

// ReportFM3 is the structured diagnostic for FM-3 (pinned pre-validation
// failure or schedule mismatch).
type ReportFM3 struct {
	PinnedConflicts []map[string]any `json:"pinned_conflicts"`
	RemainingBudget map[string]any   `json:"remaining_budget"`
}

// BuildReportFM3 builds the FM-3 diagnostic from a pinned validation
// failure or a schedule-length mismatch.
func BuildReportFM3(constraintDetail string) ReportFM3 {
	return ReportFM3{
		PinnedConflicts: []map[string]any{{"blocking_constraint": constraintDetail}},
		RemainingBudget: map[string]any{},
	}
}

// DeficientNutrient describes one weekly micronutrient shortfall.
type DeficientNutrient struct {
	Nutrient       string  `json:"nutrient"`
	Achieved       float64 `json:"achieved"`
	Required       float64 `json:"required"`
	Deficit        float64 `json:"deficit"`
	Classification string  `json:"classification"` // "marginal" or "structural"
}

func deficientNutrientsList(weekly mealplan.WeeklyTracker, tracked map[string]float64, planDays int, maxDailyAchievable map[string]map[int]float64) []DeficientNutrient {
	if len(tracked) == 0 {
		return nil
	}
	micro := weekly.WeeklyTotals.Micronutrients.ToMap()
	var out []DeficientNutrient
	for _, n := range mealplan.NutrientFields {
		dailyRDI, ok := tracked[n]
		if !ok || dailyRDI <= 0 {
			continue
		}
		required := dailyRDI * float64(planDays)
		achieved := micro[n]
		deficit := required - achieved
		if deficit <= 0 {
			continue
		}
		mdaOneDay := 0.0
		if perSlot, ok := maxDailyAchievable[n]; ok {
			for s := 1; s <= mealplan.MaxSlotsPerDay; s++ {
				if v := perSlot[s]; v > mdaOneDay {
					mdaOneDay = v
				}
			}
		}
		classification := "structural"
		if deficit <= mdaOneDay {
			classification = "marginal"
		}
		out = append(out, DeficientNutrient{
			Nutrient: n, Achieved: achieved, Required: required, Deficit: deficit, Classification: classification,
		})
	}
	return out
}

// ReportFM4 is the structured diagnostic for FM-4 (weekly micronutrient
// infeasibility).
type ReportFM4 struct {
	DeficientNutrients []DeficientNutrient `json:"deficient_nutrients"`
}

// BuildReportFM4 builds the FM-4 diagnostic.
func BuildReportFM4(weekly mealplan.WeeklyTracker, tracked map[string]float64, planDays int, maxDailyAchievable map[string]map[int]float64) ReportFM4 {
	return ReportFM4{DeficientNutrients: deficientNutrientsList(weekly, tracked, planDays, maxDailyAchievable)}
}

// ReportFM5 is the structured diagnostic for FM-5 (attempt limit reached).
type ReportFM5 struct {
	Attempts          int            `json:"attempts"`
	Backtracks        int            `json:"backtracks"`
	SearchExhaustive  bool           `json:"search_exhaustive"`
	BestPlan          *PlanSnapshot  `json:"best_plan"`
	BestPlanViolations map[string]any `json:"best_plan_violations"`
}

// BuildReportFM5 builds the FM-5 diagnostic.
func BuildReportFM5(attempts, backtracks int, bestPlan PlanSnapshot) ReportFM5 {
	return ReportFM5{
		Attempts: attempts, Backtracks: backtracks, SearchExhaustive: false,
		BestPlan: &bestPlan, BestPlanViolations: map[string]any{},
	}
}

// SodiumAdvisory is the success-path sodium warning attached when weekly
// sodium exceeds 200% of the prorated RDI.
type SodiumAdvisory struct {
	Type              string  `json:"type"`
	WeeklySodiumMg    float64 `json:"weekly_sodium_mg"`
	RecommendedMaxMg  float64 `json:"recommended_max_mg"`
	Ratio             float64 `json:"ratio"`
}

// BuildSodiumWarning returns the advisory if weekly sodium exceeds 200% of
// the prorated RDI, or nil otherwise.
func BuildSodiumWarning(weekly mealplan.WeeklyTracker, tracked map[string]float64, planDays int) *SodiumAdvisory {
	dailyRDI, ok := tracked["sodium_mg"]
	if !ok || dailyRDI <= 0 {
		return nil
	}
	weeklySodium := weekly.WeeklyTotals.Micronutrients.SodiumMg
	recommendedMax := 2.0 * dailyRDI * float64(planDays)
	if weeklySodium <= recommendedMax {
		return nil
	}
	ratio := 0.0
	if recommendedMax != 0 {
		ratio = weeklySodium / (dailyRDI * float64(planDays))
	}
	return &SodiumAdvisory{Type: "sodium_advisory", WeeklySodiumMg: weeklySodium, RecommendedMaxMg: recommendedMax, Ratio: ratio}
}

// TextWarning is the failure-path warning shape carrying a plain advisory
// message (as opposed to the structured SodiumAdvisory attached on success).
type TextWarning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// MealPlanResult is the canonical, JSON-serializable result of a search,
// covering both success and failure.
type MealPlanResult struct {
	Success         bool                   `json:"success"`
	TerminationCode string                 `json:"termination_code"` // TC-1..TC-4
	FailureMode     string                 `json:"failure_mode,omitempty"`
	Plan            []AssignmentDict       `json:"plan,omitempty"`
	DailyTrackers   map[string]DailyTrackerSummary `json:"daily_trackers,omitempty"`
	WeeklyTotals    *mealplan.Nutrition    `json:"weekly_totals,omitempty"`
	SodiumWarning   *SodiumAdvisory        `json:"sodium_warning,omitempty"`
	TextWarning     *TextWarning           `json:"warning,omitempty"`
	Report          any                    `json:"report,omitempty"`
	Attempts        int                    `json:"attempts"`
	Backtracks      int                    `json:"backtracks"`
}

// FromResult renders a search.Result into the canonical MealPlanResult,
// choosing the termination code and structured report shape appropriate to
// the outcome. tracked/planDays/maxDailyAchievable are needed to render the
// FM-4 deficient-nutrients breakdown and the success-path sodium warning;
// pass zero values when unavailable (an FM-3/schedule-mismatch failure, for
// instance, never reaches that code path).
func FromResult(res search.Result, tracked map[string]float64, planDays int, maxDailyAchievable map[string]map[int]float64) MealPlanResult {
	backtracks := 0
	if res.Stats != nil {
		backtracks = len(res.Stats.BacktrackDepths)
	}

	if res.Success {
		terminationCode := "TC-1"
		if planDays == 1 {
			terminationCode = "TC-4"
		}
		plan := make([]AssignmentDict, len(res.Plan.Assignments))
		for i, a := range res.Plan.Assignments {
			plan[i] = AssignmentToDict(a)
		}
		trackers := make(map[string]DailyTrackerSummary, len(res.Plan.DailyTrackers))
		for d, t := range res.Plan.DailyTrackers {
			trackers[itoa(d)] = DailyTrackerToDict(t)
		}
		weeklyTotals := res.Plan.WeeklyTracker.WeeklyTotals
		return MealPlanResult{
			Success:         true,
			TerminationCode: terminationCode,
			Plan:            plan,
			DailyTrackers:   trackers,
			WeeklyTotals:    &weeklyTotals,
			SodiumWarning:   BuildSodiumWarning(res.Plan.WeeklyTracker, tracked, planDays),
			Attempts:        res.Stats.TotalAttempts,
			Backtracks:      backtracks,
		}
	}

	f := res.Failure
	terminationCode := "TC-2"
	if f.FailureMode == "FM-5" {
		terminationCode = "TC-3"
	}

	var textWarning *TextWarning
	if f.SodiumAdvisory != "" {
		textWarning = &TextWarning{Type: "sodium_advisory_text", Message: f.SodiumAdvisory}
	}

	snapshot := BuildPlanSnapshot(f.BestPartialAssignments, f.BestPartialDailyTrackers)

	var rep any
	switch f.FailureMode {
	case "FM-1":
		day, slot := 0, 0
		if f.DayIndex != nil {
			day = *f.DayIndex
		}
		if f.SlotIndex != nil {
			slot = *f.SlotIndex
		}
		rep = BuildReportFM1(day, slot, f.ConstraintDetail, 0)
	case "FM-2":
		rep = BuildReportFM2(derefOr(f.DayIndex, 0), f.DayIndex != nil, f.ConstraintDetail, snapshot)
	case "FM-3":
		rep = BuildReportFM3(f.ConstraintDetail)
	case "FM-4":
		rep = BuildReportFM4(weeklyFromTrackers(f.BestPartialDailyTrackers), tracked, planDays, maxDailyAchievable)
	case "FM-5":
		rep = BuildReportFM5(f.AttemptCount, backtracks, snapshot)
	}

	return MealPlanResult{
		Success:         false,
		TerminationCode: terminationCode,
		FailureMode:     f.FailureMode,
		TextWarning:     textWarning,
		Report:          rep,
		Attempts:        f.AttemptCount,
		Backtracks:      backtracks,
	}
}

func derefOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// weeklyFromTrackers approximates the weekly totals an FM-4 report needs
// by summing every daily tracker present at failure time. FM-4 comes either
// from weekly validation, when every day is complete, or from the FC-4 check
// at the start of a day, when the trackers present are the completed earlier
// days plus any later day that already holds pinned assignments.
func weeklyFromTrackers(trackers map[int]mealplan.DailyTracker) mealplan.WeeklyTracker {
	var totals mealplan.Nutrition
	for _, t := range trackers {
		totals = totals.Add(mealplan.Nutrition{
			Calories:       t.CaloriesConsumed,
			ProteinG:       t.ProteinConsumed,
			FatG:           t.FatConsumed,
			CarbsG:         t.CarbsConsumed,
			Micronutrients: mealplan.FromMap(t.MicronutrientsConsumed),
		})
	}
	return mealplan.WeeklyTracker{WeeklyTotals: totals}
}
