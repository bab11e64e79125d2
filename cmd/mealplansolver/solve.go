package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nutriplan/mealsolver/internal/feasibility"
	"github.com/nutriplan/mealsolver/internal/instrument"
	"github.com/nutriplan/mealsolver/internal/mealplan"
	"github.com/nutriplan/mealsolver/internal/reference"
	"github.com/nutriplan/mealsolver/internal/report"
	"github.com/nutriplan/mealsolver/internal/search"
)

var (
	scenarioPath string
	verboseTrace bool

	solveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Run the solver against a scenario file and print the resulting plan or failure report",
		RunE:  runSolve,
	}
)

func init() {
	solveCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a scenario JSON file (required)")
	solveCmd.Flags().BoolVar(&verboseTrace, "trace", false, "Log every assignment attempt (debug level), backtrack and completed day (info level)")
	_ = solveCmd.MarkFlagRequired("scenario")
}

func runSolve(cmd *cobra.Command, args []string) error {
	scenario, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}

	profile := scenario.toProfile(settings.MaxScalingSteps, settings.ScalingStepFraction, settings.EnableCarbDownscalingDefault)
	planDays := len(scenario.Schedule)

	ulLoader := reference.NewULLoader(settings.ULReferencePath)
	limits, err := reference.ResolveUpperLimits(ulLoader, profile.Demographic, profile.UpperLimitOverrides)
	if err != nil {
		return fmt.Errorf("resolving upper limits: %w", err)
	}

	logger.Info("starting solve",
		zap.Int("plan_days", planDays),
		zap.Int("recipe_pool_size", len(scenario.RecipePool)),
		zap.String("demographic", profile.Demographic),
	)

	var sink search.Sink
	if verboseTrace {
		sink = instrument.NewZapSink(logger)
	}

	res := search.Run(profile, scenario.RecipePool, planDays, limits, search.Config{
		AttemptLimit: settings.AttemptLimit,
		Sink:         sink,
	})

	instrument.Summarize(logger, res)

	maxDailyAchievable := feasibility.PrecomputeMaxDailyAchievable(scenario.RecipePool, mealplan.MaxSlotsPerDay)
	result := report.FromResult(res, profile.MicronutrientTargets, planDays, maxDailyAchievable)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(encoded))

	if !result.Success {
		cmd.SilenceUsage = true
		return fmt.Errorf("solve failed: %s", result.FailureMode)
	}
	return nil
}
