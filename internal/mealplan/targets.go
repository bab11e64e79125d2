package mealplan

// Activity/satiety multiplicative shift factors applied when distributing
// the daily budget across remaining slots.
const (
	PreWorkoutProteinFactor   = 0.8
	PreWorkoutCarbsFactor     = 1.1
	PostWorkoutProteinFactor  = 1.2
	PostWorkoutCarbsFactor    = 1.1
	PostWorkoutCaloriesFactor = 1.1
	HighSatietyCaloriesFactor = 1.1
	HighSatietyProteinFactor  = 1.1
	HighSatietyFatFactor      = 1.1
)

// AdjustedDailyTarget spreads a micronutrient's carried-over deficit evenly
// across the days still remaining, including the current one.
func AdjustedDailyTarget(baseDailyTarget, carryoverNeeds float64, daysRemaining int) float64 {
	if daysRemaining <= 0 {
		return baseDailyTarget
	}
	return baseDailyTarget + carryoverNeeds/float64(daysRemaining)
}

// PerMealTarget is the macro budget derived for one decision point.
type PerMealTarget struct {
	Calories float64
	ProteinG float64
	FatMin   float64
	FatMax   float64
	CarbsG   float64
}

// ComputePerMealTarget distributes the remaining daily macro budget evenly
// over the slots left today, then applies activity-context and
// satiety-driven multiplicative shifts.
func ComputePerMealTarget(tracker DailyTracker, profile UserProfile, activityContext map[string]bool, satiety string) PerMealTarget {
	remainingCalories := float64(profile.DailyCalories) - tracker.CaloriesConsumed
	remainingProtein := profile.DailyProteinG - tracker.ProteinConsumed
	remainingFatMax := profile.DailyFatG.Max - tracker.FatConsumed
	remainingFatMin := profile.DailyFatG.Min - tracker.FatConsumed
	remainingCarbs := profile.DailyCarbsG - tracker.CarbsConsumed

	slotsLeft := tracker.SlotsTotal - tracker.SlotsAssigned
	if slotsLeft <= 0 {
		slotsLeft = 1
	}
	f := float64(slotsLeft)

	cal := remainingCalories / f
	pro := remainingProtein / f
	fmin := remainingFatMin / f
	fmax := remainingFatMax / f
	carb := remainingCarbs / f

	if activityContext[ActivityPreWorkout] {
		pro *= PreWorkoutProteinFactor
		carb *= PreWorkoutCarbsFactor
	}
	if activityContext[ActivityPostWorkout] {
		cal *= PostWorkoutCaloriesFactor
		pro *= PostWorkoutProteinFactor
		carb *= PostWorkoutCarbsFactor
	}
	if satiety == SatietyHigh {
		cal *= HighSatietyCaloriesFactor
		pro *= HighSatietyProteinFactor
		fmin *= HighSatietyFatFactor
		fmax *= HighSatietyFatFactor
	}

	return PerMealTarget{Calories: cal, ProteinG: pro, FatMin: fmin, FatMax: fmax, CarbsG: carb}
}

// RecomputeCarryover sets weekly.CarryoverNeeds from the accumulated weekly
// totals and the number of completed days.
func RecomputeCarryover(weekly *WeeklyTracker, profile UserProfile) {
	tracked := profile.MicronutrientTargets
	if len(tracked) == 0 {
		weekly.CarryoverNeeds = map[string]float64{}
		return
	}
	micro := weekly.WeeklyTotals.Micronutrients.ToMap()
	daysDone := weekly.DaysCompleted
	carry := make(map[string]float64, len(tracked))
	for n, dailyRDI := range tracked {
		if dailyRDI <= 0 {
			continue
		}
		needed := dailyRDI * float64(daysDone)
		consumed := micro[n]
		v := needed - consumed
		if v < 0 {
			v = 0
		}
		carry[n] = v
	}
	weekly.CarryoverNeeds = carry
}
