package mealplan

import "fmt"

// ValidatePlanningHorizon checks that D falls within [MinPlanDays, MaxPlanDays].
func ValidatePlanningHorizon(d int) error {
	if d < MinPlanDays || d > MaxPlanDays {
		return fmt.Errorf("planning horizon D must be in [%d, %d]: got %d", MinPlanDays, MaxPlanDays, d)
	}
	return nil
}

// ValidateScheduleStructure checks schedule has exactly d days, each with
// between MinSlotsPerDay and MaxSlotsPerDay slots.
func ValidateScheduleStructure(schedule [][]MealSlot, d int) error {
	if len(schedule) != d {
		return fmt.Errorf("schedule must have exactly D=%d days: got %d", d, len(schedule))
	}
	for i, day := range schedule {
		n := len(day)
		if n < MinSlotsPerDay {
			return fmt.Errorf("day %d has %d slots; minimum is %d", i+1, n, MinSlotsPerDay)
		}
		if n > MaxSlotsPerDay {
			return fmt.Errorf("day %d has %d slots; maximum is %d", i+1, n, MaxSlotsPerDay)
		}
	}
	return nil
}

// TotalDecisionPoints returns the total slot count across all days.
func TotalDecisionPoints(schedule [][]MealSlot, d int) (int, error) {
	if err := ValidateScheduleStructure(schedule, d); err != nil {
		return 0, err
	}
	total := 0
	for _, day := range schedule {
		total += len(day)
	}
	return total, nil
}

// DecisionOrder lists every (day, slot) pair in the fixed order the search
// visits: day-major, then slot-minor.
func DecisionOrder(schedule [][]MealSlot, d int) []SlotKey {
	out := make([]SlotKey, 0, d*4)
	for day := 0; day < d; day++ {
		for slot := range schedule[day] {
			out = append(out, SlotKey{Day: day, Slot: slot})
		}
	}
	return out
}
