package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"climb.dev/pkg/climb/internal/domain"
	m "climb.dev/pkg/climb/internal/model"
)

var runParallelFlag int
var runSeedFlag uint64
var runSelectiveFlag bool
var runMetricsFileFlag string
var runBudgetTypeFlag string
var runBudgetLimitFlag int64
var runDSEProbabilityFlag float64
var runStringStrategyFlag string
var runReferenceStrategyFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenarios...]",
		Short: "Refine scenario test cases",
		Long:  runLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Run(cmd.Context(), domain.RunArgs{
				Paths:       parsePaths(args),
				Reports:     m.Path(viper.GetString(outputFlagName)),
				Threads:     viper.GetInt(runParallelConfigKey),
				Seed:        viper.GetUint64(runSeedConfigKey),
				Config:      searchConfig(),
				BudgetType:  domain.BudgetType(viper.GetString(budgetTypeKey)),
				BudgetLimit: viper.GetInt64(budgetLimitKey),
				MetricsFile: viper.GetString(metricsFileKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	defaults := domain.DefaultConfig()

	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", defaultRunParallel, "number of scenarios refined in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().Uint64Var(&runSeedFlag, runSeedFlagName, 0, "random seed for every scenario (0 keeps each scenario's own seed)")
	bindFlagToConfig(cmd.Flags().Lookup(runSeedFlagName), runSeedConfigKey)

	cmd.Flags().BoolVar(&runSelectiveFlag, selectiveFlagName, defaults.Selective, "only search statements changed by the scenario's mutation history")
	bindFlagToConfig(cmd.Flags().Lookup(selectiveFlagName), searchSelectiveKey)

	cmd.Flags().StringVar(&runMetricsFileFlag, metricsFileFlagName, "", "write search statistics in Prometheus text format to this file")
	bindFlagToConfig(cmd.Flags().Lookup(metricsFileFlagName), metricsFileKey)

	cmd.Flags().StringVar(&runBudgetTypeFlag, budgetTypeFlagName, defaultBudgetType, "local search budget unit: statements, tests, time or fitness_evaluations")
	bindFlagToConfig(cmd.Flags().Lookup(budgetTypeFlagName), budgetTypeKey)

	cmd.Flags().Int64Var(&runBudgetLimitFlag, budgetLimitFlagName, defaultBudgetLimit, "local search budget limit (seconds for time)")
	bindFlagToConfig(cmd.Flags().Lookup(budgetLimitFlagName), budgetLimitKey)

	cmd.Flags().Float64Var(&runDSEProbabilityFlag, dseProbabilityFlagName, defaults.DSEProbability, "probability of handing primitives to the concolic engine")
	bindFlagToConfig(cmd.Flags().Lookup(dseProbabilityFlagName), searchDSEProbabilityKey)

	cmd.Flags().StringVar(&runStringStrategyFlag, stringStrategyFlagName, string(defaults.StringStrategy), "string mover: avm or neighbor")
	bindFlagToConfig(cmd.Flags().Lookup(stringStrategyFlagName), searchStringStrategyKey)

	cmd.Flags().StringVar(&runReferenceStrategyFlag, referenceStrategyFlagName, string(defaults.ReferenceStrategy), "object mover: random or exhaustive")
	bindFlagToConfig(cmd.Flags().Lookup(referenceStrategyFlagName), searchReferenceStrategyKey)
}
