// Package instrument provides optional, purely observational search
// instrumentation: a zap-backed search.Sink that logs a structured line per
// attempt, backtrack, and completed day, and Summarize, which logs one
// summary line from a finished search's search.Stats. Neither ever
// influences search behavior — search.Run produces identical outcomes
// whether or not a search.Sink is attached.
package instrument

import (
	"time"

	"go.uber.org/zap"

	"github.com/nutriplan/mealsolver/internal/mealplan"
	"github.com/nutriplan/mealsolver/internal/search"
)

// ZapSink logs one structured line per attempt, backtrack, and completed
// day to a *zap.Logger. It implements search.Sink.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink returns a Sink that logs through log.
func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log}
}

var _ search.Sink = (*ZapSink)(nil)

// OnAttempt logs a debug-level line for one assignment attempt.
func (s *ZapSink) OnAttempt(key mealplan.SlotKey) {
	s.log.Debug("assignment attempt", zap.Int("day", key.Day), zap.Int("slot", key.Slot))
}

// OnBacktrack logs an info-level line for a backtrack of the given depth.
func (s *ZapSink) OnBacktrack(depth int) {
	s.log.Info("backtrack", zap.Int("depth", depth))
}

// OnDayComplete logs an info-level line when a day finishes validation.
func (s *ZapSink) OnDayComplete(day int, runtime time.Duration) {
	s.log.Info("day complete", zap.Int("day", day), zap.Duration("runtime", runtime))
}

// Summarize emits a single info-level summary line for a finished search,
// independent of any live Sink notifications that ran during the search.
func Summarize(log *zap.Logger, res search.Result) {
	if res.Stats == nil {
		return
	}
	fields := []zap.Field{
		zap.Bool("success", res.Success),
		zap.Int("total_attempts", res.Stats.TotalAttempts),
		zap.Int("backtracks", len(res.Stats.BacktrackDepths)),
		zap.Int("max_backtrack_depth", res.Stats.MaxDepth()),
		zap.Float64("average_backtrack_depth", res.Stats.AverageBacktrackDepth()),
		zap.Duration("total_runtime", res.Stats.TotalRuntime),
	}
	if !res.Success && res.Failure != nil {
		fields = append(fields, zap.String("failure_mode", res.Failure.FailureMode))
	}
	log.Info("meal plan search finished", fields...)
}
