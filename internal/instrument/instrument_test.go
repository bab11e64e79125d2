package instrument

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nutriplan/mealsolver/internal/mealplan"
	"github.com/nutriplan/mealsolver/internal/search"
)

func observedSink() (*ZapSink, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapSink(zap.New(core)), logs
}

func TestZapSinkOnAttemptLogsDayAndSlot(t *testing.T) {
	sink, logs := observedSink()
	sink.OnAttempt(mealplan.SlotKey{Day: 2, Slot: 1})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "assignment attempt", entry.Message)
	assert.Equal(t, int64(2), entry.ContextMap()["day"])
	assert.Equal(t, int64(1), entry.ContextMap()["slot"])
}

func TestZapSinkOnBacktrackLogsDepth(t *testing.T) {
	sink, logs := observedSink()
	sink.OnBacktrack(3)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "backtrack", logs.All()[0].Message)
	assert.Equal(t, int64(3), logs.All()[0].ContextMap()["depth"])
}

func TestZapSinkOnDayCompleteLogsRuntime(t *testing.T) {
	sink, logs := observedSink()
	sink.OnDayComplete(0, 2*time.Second)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "day complete", logs.All()[0].Message)
}

func TestSummarizeEmitsOneLineWithTopLineStats(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	res := search.Result{
		Success: true,
		Stats: &search.Stats{
			TotalAttempts:   10,
			BacktrackDepths: []int{1, 2, 3},
			TotalRuntime:    5 * time.Millisecond,
		},
	}
	Summarize(log, res)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "meal plan search finished", entry.Message)
	assert.Equal(t, int64(10), entry.ContextMap()["total_attempts"])
	assert.Equal(t, int64(3), entry.ContextMap()["backtracks"])
	assert.Equal(t, int64(3), entry.ContextMap()["max_backtrack_depth"])
}

func TestSummarizeIncludesFailureModeOnFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	res := search.Result{
		Success: false,
		Failure: &search.PlanFailure{FailureMode: "FM-5"},
		Stats:   &search.Stats{TotalAttempts: 50000},
	}
	Summarize(log, res)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "FM-5", logs.All()[0].ContextMap()["failure_mode"])
}

func TestSummarizeIsNoOpWithoutStats(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	Summarize(log, search.Result{Success: true})
	assert.Equal(t, 0, logs.Len())
}
