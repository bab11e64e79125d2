// Package search orchestrates the greedy-with-backtracking assignment of
// recipes to meal slots. It wires together candidate generation, scoring,
// and ordering from sibling packages; it does not reimplement any of their
// logic. The search itself is pure with respect to its inputs: given the
// same profile, recipe pool, and configuration, it always retraces the same
// sequence of attempts and backtracks.
package search

import (
	"sort"
	"time"

	"github.com/nutriplan/mealsolver/internal/candidates"
	"github.com/nutriplan/mealsolver/internal/feasibility"
	"github.com/nutriplan/mealsolver/internal/mealplan"
	"github.com/nutriplan/mealsolver/internal/ordering"
	"github.com/nutriplan/mealsolver/internal/scoring"
)

// DefaultAttemptLimit bounds the number of assignments a search will
// attempt before giving up and reporting FM-5.
const DefaultAttemptLimit = 50_000

// DailyTolerance is the +/-10% band a day's calories/protein/carbs must
// land within to pass daily validation.
const DailyTolerance = 0.10

// Sink receives optional, purely observational notifications as the search
// runs. A nil Sink is always safe to pass; no notification affects search
// behavior or outcome.
type Sink interface {
	OnAttempt(key mealplan.SlotKey)
	OnBacktrack(depth int)
	OnDayComplete(day int, runtime time.Duration)
}

// Stats accumulates the same observational metrics a Sink would receive,
// for callers that want a summary after the run rather than a live feed.
type Stats struct {
	TotalAttempts    int
	AttemptsPerSlot  map[mealplan.SlotKey]int
	AttemptsPerDay   map[int]int
	BranchingFactors map[mealplan.SlotKey]int
	BacktrackDepths  []int
	DayRuntimes      map[int]time.Duration
	TotalRuntime     time.Duration
}

func newStats() *Stats {
	return &Stats{
		AttemptsPerSlot:  map[mealplan.SlotKey]int{},
		AttemptsPerDay:   map[int]int{},
		BranchingFactors: map[mealplan.SlotKey]int{},
		DayRuntimes:      map[int]time.Duration{},
	}
}

// MaxDepth returns the deepest backtrack observed, or 0 if none occurred.
func (s *Stats) MaxDepth() int {
	max := 0
	for _, d := range s.BacktrackDepths {
		if d > max {
			max = d
		}
	}
	return max
}

// AverageBacktrackDepth returns the mean backtrack depth, or 0 if no
// backtrack occurred.
func (s *Stats) AverageBacktrackDepth() float64 {
	if len(s.BacktrackDepths) == 0 {
		return 0
	}
	total := 0
	for _, d := range s.BacktrackDepths {
		total += d
	}
	return float64(total) / float64(len(s.BacktrackDepths))
}

// PlanSuccess is the TC-1/TC-4 result: a fully valid assignment.
type PlanSuccess struct {
	Assignments    []mealplan.Assignment
	DailyTrackers  map[int]mealplan.DailyTracker
	WeeklyTracker  mealplan.WeeklyTracker
	SodiumAdvisory string
}

// PlanFailure is the TC-2/TC-3 result: a structured diagnostic describing
// why no valid assignment could be found.
type PlanFailure struct {
	FailureMode              string // FM-1 .. FM-5
	DayIndex                 *int
	SlotIndex                *int
	ConstraintDetail         string
	BestPartialAssignments   []mealplan.Assignment
	BestPartialDailyTrackers map[int]mealplan.DailyTracker
	AttemptCount             int
	SodiumAdvisory           string
}

// Result is the outcome of a search: exactly one of Plan or Failure is set.
type Result struct {
	Success bool
	Plan    *PlanSuccess
	Failure *PlanFailure
	Stats   *Stats
}

// Config tunes search behavior without changing its semantics.
type Config struct {
	AttemptLimit int
	Sink         Sink
}

func intPtr(v int) *int { return &v }

type cacheEntry struct {
	ordered []ordering.ScoredCandidate
	pointer int
}

type searcher struct {
	profile      mealplan.UserProfile
	recipePool   []mealplan.Recipe
	recipeByID   map[string]mealplan.Recipe
	planDays     int
	limits       mealplan.UpperLimits
	attemptLimit int
	sink         Sink
	stats        *Stats

	schedule           [][]mealplan.MealSlot
	macroBounds        feasibility.MacroBounds
	maxDailyAchievable map[string]map[int]float64
	order              []mealplan.SlotKey
	cache              map[mealplan.SlotKey]*cacheEntry
	completedDays      map[int]bool

	dailyTrackers map[int]mealplan.DailyTracker
	weeklyTracker mealplan.WeeklyTracker
	assignments   []mealplan.Assignment

	bestAssignments   []mealplan.Assignment
	bestDailyTrackers map[int]mealplan.DailyTracker

	attemptCount   int
	sodiumAdvisory string
	dayStarts      map[int]time.Time
}

// Run executes the search to completion (success, exhaustion, or attempt
// limit) and returns a structured Result.
func Run(profile mealplan.UserProfile, recipePool []mealplan.Recipe, planDays int, limits mealplan.UpperLimits, cfg Config) Result {
	stats := newStats()
	start := time.Now()

	if len(profile.Schedule) != planDays {
		stats.TotalRuntime = time.Since(start)
		return Result{
			Success: false,
			Failure: &PlanFailure{FailureMode: "FM-3", ConstraintDetail: "schedule length does not match plan days"},
			Stats:   stats,
		}
	}

	recipeByID := make(map[string]mealplan.Recipe, len(recipePool))
	for _, r := range recipePool {
		recipeByID[r.ID] = r
	}

	pinResult := mealplan.ValidatePinnedAssignments(profile, recipeByID, planDays)
	if !pinResult.Success {
		stats.TotalRuntime = time.Since(start)
		return Result{
			Success: false,
			Failure: &PlanFailure{FailureMode: "FM-3", ConstraintDetail: pinResult.FailedHC},
			Stats:   stats,
		}
	}

	initial := mealplan.BuildInitialState(profile, recipeByID, planDays)

	attemptLimit := cfg.AttemptLimit
	if attemptLimit <= 0 {
		attemptLimit = DefaultAttemptLimit
	}

	s := &searcher{
		profile:            profile,
		recipePool:         recipePool,
		recipeByID:         recipeByID,
		planDays:           planDays,
		limits:             limits,
		attemptLimit:       attemptLimit,
		sink:               cfg.Sink,
		stats:              stats,
		schedule:           profile.Schedule,
		macroBounds:        feasibility.PrecomputeMacroBounds(recipePool, mealplan.MaxSlotsPerDay),
		maxDailyAchievable: feasibility.PrecomputeMaxDailyAchievable(recipePool, mealplan.MaxSlotsPerDay),
		order:              mealplan.DecisionOrder(profile.Schedule, planDays),
		cache:              map[mealplan.SlotKey]*cacheEntry{},
		completedDays:      map[int]bool{},
		dailyTrackers:      initial.DailyTrackers,
		weeklyTracker:      initial.WeeklyTracker,
		assignments:        initial.Assignments,
		dayStarts:          map[int]time.Time{},
	}
	s.weeklyTracker.WeeklyTotals = mealplan.Nutrition{}
	s.weeklyTracker.DaysCompleted = 0
	s.weeklyTracker.DaysRemaining = planDays
	s.weeklyTracker.CarryoverNeeds = map[string]float64{}
	for n := range profile.MicronutrientTargets {
		s.weeklyTracker.CarryoverNeeds[n] = 0
	}
	s.bestAssignments = append([]mealplan.Assignment(nil), s.assignments...)
	s.bestDailyTrackers = cloneTrackers(s.dailyTrackers)

	result := s.run()
	stats.TotalAttempts = s.attemptCount
	stats.TotalRuntime = time.Since(start)
	result.Stats = stats
	return result
}

func cloneTrackers(m map[int]mealplan.DailyTracker) map[int]mealplan.DailyTracker {
	out := make(map[int]mealplan.DailyTracker, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

func (s *searcher) isPinned(key mealplan.SlotKey) (string, bool) {
	rid, ok := s.profile.PinnedAssignments[key]
	return rid, ok
}

func (s *searcher) activityContext(dayIndex, slotIndex int) (map[string]bool, bool) {
	daySlots := s.schedule[dayIndex]
	var nextFirst *mealplan.MealSlot
	if dayIndex+1 < s.planDays {
		nextFirst = &s.schedule[dayIndex+1][0]
	}
	ctx := mealplan.ActivityContext(daySlots[slotIndex], slotIndex, daySlots, nextFirst, s.profile.ActivitySchedule)
	return ctx, mealplan.IsWorkoutSlot(ctx)
}

func (s *searcher) applyAssignment(dayIndex, slotIndex int, recipe mealplan.Recipe, isWorkout bool) {
	slotsTotal := len(s.schedule[dayIndex])
	tracker, ok := s.dailyTrackers[dayIndex]
	if !ok {
		tracker = mealplan.NewDailyTracker(slotsTotal)
	}
	n := recipe.Nutrition
	tracker.CaloriesConsumed += n.Calories
	tracker.ProteinConsumed += n.ProteinG
	tracker.FatConsumed += n.FatG
	tracker.CarbsConsumed += n.CarbsG
	if tracker.MicronutrientsConsumed == nil {
		tracker.MicronutrientsConsumed = map[string]float64{}
	}
	if tracker.UsedRecipeIDs == nil {
		tracker.UsedRecipeIDs = map[string]bool{}
	}
	if tracker.NonWorkoutRecipeIDs == nil {
		tracker.NonWorkoutRecipeIDs = map[string]bool{}
	}
	for _, f := range mealplan.NutrientFields {
		tracker.MicronutrientsConsumed[f] += n.Micronutrients.Get(f)
	}
	tracker.UsedRecipeIDs[recipe.ID] = true
	if !isWorkout {
		tracker.NonWorkoutRecipeIDs[recipe.ID] = true
	}
	tracker.SlotsAssigned++
	tracker.SlotsTotal = slotsTotal
	s.dailyTrackers[dayIndex] = tracker
	s.assignments = append(s.assignments, mealplan.Assignment{Day: dayIndex, Slot: slotIndex, RecipeID: recipe.ID})
}

func removeFromSlice(assignments []mealplan.Assignment, day, slot int, recipeID string) []mealplan.Assignment {
	for i, a := range assignments {
		if a.Day == day && a.Slot == slot && a.RecipeID == recipeID {
			return append(assignments[:i], assignments[i+1:]...)
		}
	}
	return assignments
}

func (s *searcher) removeAssignment(dayIndex, slotIndex int, recipe mealplan.Recipe, isWorkout bool) {
	tracker := s.dailyTrackers[dayIndex]
	n := recipe.Nutrition
	newSlotsAssigned := tracker.SlotsAssigned - 1

	if newSlotsAssigned == 0 {
		if s.completedDays[dayIndex] {
			dayTotals := mealplan.Nutrition{
				Calories:       tracker.CaloriesConsumed,
				ProteinG:       tracker.ProteinConsumed,
				FatG:           tracker.FatConsumed,
				CarbsG:         tracker.CarbsConsumed,
				Micronutrients: mealplan.FromMap(tracker.MicronutrientsConsumed),
			}
			s.weeklyTracker.WeeklyTotals = s.weeklyTracker.WeeklyTotals.Sub(dayTotals)
			delete(s.completedDays, dayIndex)
		}
		s.weeklyTracker.DaysCompleted--
		if s.weeklyTracker.DaysCompleted < 0 {
			s.weeklyTracker.DaysCompleted = 0
		}
		s.weeklyTracker.DaysRemaining = s.planDays - s.weeklyTracker.DaysCompleted
		mealplan.RecomputeCarryover(&s.weeklyTracker, s.profile)
		delete(s.dailyTrackers, dayIndex)
	} else {
		tracker.CaloriesConsumed -= n.Calories
		tracker.ProteinConsumed -= n.ProteinG
		tracker.FatConsumed -= n.FatG
		tracker.CarbsConsumed -= n.CarbsG
		for _, f := range mealplan.NutrientFields {
			tracker.MicronutrientsConsumed[f] -= n.Micronutrients.Get(f)
		}
		delete(tracker.UsedRecipeIDs, recipe.ID)
		if !isWorkout {
			delete(tracker.NonWorkoutRecipeIDs, recipe.ID)
		}
		tracker.SlotsAssigned = newSlotsAssigned
		s.dailyTrackers[dayIndex] = tracker
	}

	s.assignments = removeFromSlice(s.assignments, dayIndex, slotIndex, recipe.ID)
}

func (s *searcher) updateWeeklyAfterDay(dayIndex int) {
	tracker := s.dailyTrackers[dayIndex]
	dayNut := mealplan.Nutrition{
		Calories:       tracker.CaloriesConsumed,
		ProteinG:       tracker.ProteinConsumed,
		FatG:           tracker.FatConsumed,
		CarbsG:         tracker.CarbsConsumed,
		Micronutrients: mealplan.FromMap(tracker.MicronutrientsConsumed),
	}
	s.weeklyTracker.WeeklyTotals = s.weeklyTracker.WeeklyTotals.Add(dayNut)
	s.weeklyTracker.DaysCompleted++
	s.weeklyTracker.DaysRemaining = s.planDays - s.weeklyTracker.DaysCompleted
	mealplan.RecomputeCarryover(&s.weeklyTracker, s.profile)
}

func (s *searcher) dailyValidation(dayIndex int, tracker mealplan.DailyTracker) (bool, string) {
	p := s.profile
	if abs(tracker.CaloriesConsumed-float64(p.DailyCalories)) > DailyTolerance*float64(p.DailyCalories) {
		return false, "calories"
	}
	if abs(tracker.ProteinConsumed-p.DailyProteinG) > DailyTolerance*p.DailyProteinG {
		return false, "protein"
	}
	if abs(tracker.CarbsConsumed-p.DailyCarbsG) > DailyTolerance*p.DailyCarbsG {
		return false, "carbs"
	}
	if tracker.FatConsumed < p.DailyFatG.Min || tracker.FatConsumed > p.DailyFatG.Max {
		return false, "fat"
	}
	if p.MaxDailyCalories != nil && tracker.CaloriesConsumed > float64(*p.MaxDailyCalories) {
		return false, "calorie_ceiling"
	}
	for _, f := range mealplan.NutrientFields {
		limit, ok := s.limits.Get(f)
		if !ok {
			continue
		}
		if tracker.MicronutrientsConsumed[f] > limit {
			return false, "UL:" + f
		}
	}
	return true, ""
}

func (s *searcher) weeklyValidation() (bool, string, string) {
	tracked := s.profile.MicronutrientTargets
	micro := s.weeklyTracker.WeeklyTotals.Micronutrients.ToMap()
	sodiumAdvisory := ""
	if rdi, ok := tracked["sodium_mg"]; ok && rdi > 0 {
		if micro["sodium_mg"] > 2.0*rdi*float64(s.planDays) {
			sodiumAdvisory = "Weekly sodium exceeds 200% of prorated RDI."
		}
	}
	for _, n := range mealplan.NutrientFields {
		rdi, ok := tracked[n]
		if !ok || rdi <= 0 {
			continue
		}
		needed := rdi * float64(s.planDays)
		if micro[n] < needed {
			return false, "weekly_deficit:" + n, sodiumAdvisory
		}
	}
	return true, "", sodiumAdvisory
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func (s *searcher) findBacktrackTarget(currentI int) (int, bool) {
	for j := currentI - 1; j >= 0; j-- {
		key := s.order[j]
		if _, pinned := s.isPinned(key); pinned {
			continue
		}
		if entry, ok := s.cache[key]; ok && entry.pointer < len(entry.ordered) {
			return j, true
		}
	}
	return 0, false
}

func (s *searcher) unwindTo(targetI int) int {
	target := s.order[targetI]

	type removal struct {
		key      mealplan.SlotKey
		recipeID string
	}
	var toRemove []removal
	for _, a := range s.assignments {
		key := mealplan.SlotKey{Day: a.Day, Slot: a.Slot}
		if !keyGE(key, target) {
			continue
		}
		if _, pinned := s.isPinned(key); pinned {
			continue
		}
		toRemove = append(toRemove, removal{key: key, recipeID: a.RecipeID})
	}
	sort.Slice(toRemove, func(i, j int) bool {
		return keyLT(toRemove[j].key, toRemove[i].key)
	})

	currentDay := target.Day
	if len(toRemove) > 0 {
		currentDay = toRemove[0].key.Day
	}

	for _, r := range toRemove {
		recipe, ok := s.recipeByID[r.recipeID]
		if !ok {
			continue
		}
		_, isWorkout := s.activityContext(r.key.Day, r.key.Slot)
		s.removeAssignment(r.key.Day, r.key.Slot, recipe, isWorkout)
	}

	crossedDayBoundary := target.Day < currentDay
	newCache := map[mealplan.SlotKey]*cacheEntry{}
	for key, entry := range s.cache {
		if keyLT(key, target) {
			newCache[key] = entry
		} else if key == target && !crossedDayBoundary {
			entry.pointer++
			newCache[key] = entry
		}
	}
	s.cache = newCache
	return targetI
}

func keyLT(a, b mealplan.SlotKey) bool {
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	return a.Slot < b.Slot
}

func keyGE(a, b mealplan.SlotKey) bool {
	return !keyLT(a, b)
}

func (s *searcher) updateBest() {
	if len(s.assignments) > len(s.bestAssignments) {
		s.bestAssignments = append([]mealplan.Assignment(nil), s.assignments...)
		s.bestDailyTrackers = cloneTrackers(s.dailyTrackers)
	}
}

func (s *searcher) recordAttempt(key mealplan.SlotKey) {
	s.attemptCount++
	s.stats.AttemptsPerSlot[key]++
	s.stats.AttemptsPerDay[key.Day]++
	if s.sink != nil {
		s.sink.OnAttempt(key)
	}
}

func (s *searcher) recordBacktrack(depth int) {
	s.stats.BacktrackDepths = append(s.stats.BacktrackDepths, depth)
	if s.sink != nil {
		s.sink.OnBacktrack(depth)
	}
}

func (s *searcher) failureFromExhaustion(mode string, dayIndex, slotIndex *int, detail string, useBest bool) Result {
	assignments := append([]mealplan.Assignment(nil), s.assignments...)
	trackers := cloneTrackers(s.dailyTrackers)
	if useBest {
		assignments = s.bestAssignments
		trackers = s.bestDailyTrackers
	}
	return Result{
		Success: false,
		Failure: &PlanFailure{
			FailureMode:              mode,
			DayIndex:                 dayIndex,
			SlotIndex:                slotIndex,
			ConstraintDetail:         detail,
			BestPartialAssignments:   assignments,
			BestPartialDailyTrackers: trackers,
			AttemptCount:             s.attemptCount,
			SodiumAdvisory:           s.sodiumAdvisory,
		},
	}
}

func (s *searcher) run() Result {
	i := 0
	for i < len(s.order) {
		key := s.order[i]
		dayIndex, slotIndex := key.Day, key.Slot

		if s.attemptCount >= s.attemptLimit {
			return s.failureFromExhaustion("FM-5", nil, nil, "", true)
		}

		if slotIndex == 0 {
			s.dayStarts[dayIndex] = time.Now()
		}

		if dayIndex > 0 && slotIndex == 0 {
			ok := feasibility.CheckFC4(dayIndex, s.weeklyTracker.DaysRemaining, s.planDays,
				s.profile.MicronutrientTargets, s.weeklyTracker.WeeklyTotals.Micronutrients.ToMap(),
				s.maxDailyAchievable, len(s.schedule[dayIndex]))
			if !ok {
				target, found := s.findBacktrackTarget(i)
				if !found {
					return s.failureFromExhaustion("FM-4", intPtr(dayIndex), nil, "FC-4 irrecoverable deficit", false)
				}
				s.recordBacktrack(i - target)
				i = s.unwindTo(target)
				continue
			}
		}

		entry, ok := s.cache[key]
		_, isWorkout := s.activityContext(dayIndex, slotIndex)

		if recipeID, pinned := s.isPinned(key); pinned {
			alreadyAssigned := false
			for _, a := range s.assignments {
				if a.Day == dayIndex && a.Slot == slotIndex {
					alreadyAssigned = true
					break
				}
			}
			if alreadyAssigned {
				i++
				if s.completedDays[dayIndex] {
					continue
				}
				goto slotFilled
			}
			recipe := s.recipeByID[recipeID]
			_, isWorkout := s.activityContext(dayIndex, slotIndex)
			s.applyAssignment(dayIndex, slotIndex, recipe, isWorkout)
			s.recordAttempt(key)
			s.updateBest()
			i++
			goto slotFilled
		}

		if !ok {
			cg := candidates.Generate(candidates.Input{
				RecipePool:    s.recipePool,
				DayIndex:      dayIndex,
				SlotIndex:     slotIndex,
				DailyTrackers: s.dailyTrackers,
				WeeklyTracker: s.weeklyTracker,
				Schedule:      s.schedule,
				Profile:       s.profile,
				Limits:        s.limits,
				MacroBounds:   s.macroBounds,
			})
			if cg.TriggerBacktrack {
				target, found := s.findBacktrackTarget(i)
				if !found {
					return s.failureFromExhaustion("FM-1", intPtr(dayIndex), intPtr(slotIndex), "empty candidate set or FC-5", false)
				}
				s.recordBacktrack(i - target)
				i = s.unwindTo(target)
				continue
			}

			ids := make([]string, 0, len(cg.Candidates))
			for id := range cg.Candidates {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			var tracker *mealplan.DailyTracker
			if t, ok := s.dailyTrackers[dayIndex]; ok {
				tracker = &t
			}
			actCtx, _ := s.activityContext(dayIndex, slotIndex)
			daySlots := s.schedule[dayIndex]
			isLast := slotIndex+1 >= len(daySlots)
			var nextFirst *mealplan.MealSlot
			if dayIndex+1 < s.planDays {
				nextFirst = &s.schedule[dayIndex+1][0]
			}
			hoursUntil := mealplan.TimeUntilNextMeal(daySlots[slotIndex], slotIndex, daySlots, nextFirst)
			satiety := mealplan.SatietyRequirement(hoursUntil, isLast)
			perMealTracker := mealplan.NewDailyTracker(len(daySlots))
			if tracker != nil {
				perMealTracker = *tracker
			}
			perMeal := mealplan.ComputePerMealTarget(perMealTracker, s.profile, actCtx, satiety)

			scored := make([]ordering.ScoredCandidate, 0, len(ids))
			for _, id := range ids {
				r := s.recipeByID[id]
				sc := scoring.CompositeScore(scoring.CompositeInput{
					Recipe:        r,
					Slot:          daySlots[slotIndex],
					Tracker:       tracker,
					Profile:       s.profile,
					PerMeal:       perMeal,
					Satiety:       satiety,
					WeeklyTracker: s.weeklyTracker,
				})
				scored = append(scored, ordering.ScoredCandidate{Recipe: r, Score: sc})
			}

			var consumed map[string]float64
			if tracker != nil {
				consumed = tracker.MicronutrientsConsumed
			}
			ordered := ordering.OrderScoredCandidates(scored, ordering.OrderContext{
				Tracked:       s.profile.MicronutrientTargets,
				Carryover:     s.weeklyTracker.CarryoverNeeds,
				Consumed:      consumed,
				DaysRemaining: s.weeklyTracker.DaysRemaining,
				LikedFoods:    s.profile.LikedFoods,
			})
			entry = &cacheEntry{ordered: ordered}
			s.cache[key] = entry
			s.stats.BranchingFactors[key] = len(ordered)
		}

		if entry.pointer >= len(entry.ordered) {
			target, found := s.findBacktrackTarget(i)
			if !found {
				return s.failureFromExhaustion("FM-2", nil, nil, "", true)
			}
			s.recordBacktrack(i - target)
			i = s.unwindTo(target)
			continue
		}

		s.applyAssignment(dayIndex, slotIndex, entry.ordered[entry.pointer].Recipe, isWorkout)
		entry.pointer++
		s.recordAttempt(key)
		s.updateBest()
		i++

	slotFilled:
		tracker, hasTracker := s.dailyTrackers[dayIndex]
		if hasTracker && tracker.SlotsAssigned == tracker.SlotsTotal {
			ok, reason := s.dailyValidation(dayIndex, tracker)
			if !ok {
				target, found := s.findBacktrackTarget(i)
				if !found {
					return s.failureFromExhaustion("FM-2", intPtr(dayIndex), nil, reason, false)
				}
				s.recordBacktrack(i - target)
				i = s.unwindTo(target)
				continue
			}
			if start, ok := s.dayStarts[dayIndex]; ok {
				s.stats.DayRuntimes[dayIndex] = time.Since(start)
				if s.sink != nil {
					s.sink.OnDayComplete(dayIndex, s.stats.DayRuntimes[dayIndex])
				}
			}
			s.updateWeeklyAfterDay(dayIndex)
			s.completedDays[dayIndex] = true
		}

		if dayIndex == s.planDays-1 {
			lastTracker, hasLast := s.dailyTrackers[dayIndex]
			if hasLast && lastTracker.SlotsAssigned == lastTracker.SlotsTotal {
				if s.planDays == 1 {
					return Result{Success: true, Plan: &PlanSuccess{
						Assignments:    append([]mealplan.Assignment(nil), s.assignments...),
						DailyTrackers:  cloneTrackers(s.dailyTrackers),
						WeeklyTracker:  s.weeklyTracker,
						SodiumAdvisory: s.sodiumAdvisory,
					}}
				}
				ok, reason, sodiumAdv := s.weeklyValidation()
				if sodiumAdv != "" {
					s.sodiumAdvisory = sodiumAdv
				}
				if !ok {
					target, found := s.findBacktrackTarget(i)
					if !found {
						return s.failureFromExhaustion("FM-4", nil, nil, reason, false)
					}
					s.recordBacktrack(i - target)
					i = s.unwindTo(target)
					continue
				}
				return Result{Success: true, Plan: &PlanSuccess{
					Assignments:    append([]mealplan.Assignment(nil), s.assignments...),
					DailyTrackers:  cloneTrackers(s.dailyTrackers),
					WeeklyTracker:  s.weeklyTracker,
					SodiumAdvisory: s.sodiumAdvisory,
				}}
			}
		}
	}

	return s.failureFromExhaustion("FM-2", nil, nil, "", true)
}
