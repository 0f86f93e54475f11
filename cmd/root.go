// Package cmd provides the root command and CLI setup for climb.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"climb.dev/pkg/climb/internal/adapter"
	"climb.dev/pkg/climb/internal/controller"
	"climb.dev/pkg/climb/internal/domain"
	m "climb.dev/pkg/climb/internal/model"
)

var scenarioStore adapter.ScenarioStore
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// verboseFlag switches the log level to Debug.
var verboseFlag bool

func init() {
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	scenarioStore = adapter.NewYAMLScenarioStore()
	reportStore = adapter.NewJournalReportStore()
	workflow = domain.NewWorkflow(scenarioStore, reportStore, ui)
}

const scenarioHelp = `A scenario is a YAML file naming a bundled program and a test case for it.
Directories contribute every *.yaml file they contain.`

const rootLongDescription = `Climb refines generated unit tests with local search. Each scenario's
test case is improved statement by statement with alternating variable
moves, structural object moves and concolic execution, so that it covers
branches the original test missed.

` + scenarioHelp

const runLongDescription = `Refine the test cases of the given scenario files.

` + scenarioHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "climb",
		Short: "Local search refinement of generated tests",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			defaultReportsDir,
			"output directory for refinement reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
