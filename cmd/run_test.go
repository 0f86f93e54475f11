package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"climb.dev/pkg/climb/internal/domain"
	domainmocks "climb.dev/pkg/climb/internal/domain/mocks"
	m "climb.dev/pkg/climb/internal/model"
)

func newTestRunCmd(t *testing.T, mockWorkflow domain.Workflow) (*bytes.Buffer, func(args ...string) error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(newRunCmd())

	errOut := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(errOut)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	return errOut, func(args ...string) error {
		cmd.SetArgs(args)
		return cmd.Execute()
	}
}

func TestRunCmd_Defaults(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	_, execute := newTestRunCmd(t, mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Threads == 1 &&
			args.Seed == 0 &&
			args.Reports == m.Path(".climb-reports") &&
			args.BudgetType == domain.BudgetTime &&
			args.BudgetLimit == 60 &&
			args.MetricsFile == "" &&
			args.Config == domain.DefaultConfig()
	})).Return(nil)

	err := execute("run", "scenarios")
	require.NoError(t, err)

	mockWorkflow.AssertExpectations(t)
}

func TestRunCmd_Flags(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	_, execute := newTestRunCmd(t, mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Threads == 4 &&
			args.Seed == 99 &&
			args.Config.Selective &&
			args.Config.DSEProbability == 0.25 &&
			args.Config.StringStrategy == domain.StringNeighbor &&
			args.Config.ReferenceStrategy == domain.ReferenceExhaustive &&
			args.BudgetType == domain.BudgetFitnessEvaluations &&
			args.BudgetLimit == 500 &&
			args.MetricsFile == "climb.prom"
	})).Return(nil)

	err := execute("run",
		"-p", "4",
		"--seed", "99",
		"--selective",
		"--dse-probability", "0.25",
		"--string-strategy", "neighbor",
		"--reference-strategy", "exhaustive",
		"--budget-type", "fitness_evaluations",
		"--budget-limit", "500",
		"--metrics-file", "climb.prom",
		"scenarios")
	require.NoError(t, err)

	mockWorkflow.AssertExpectations(t)
}

func TestRunCmd_MultiplePaths(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	_, execute := newTestRunCmd(t, mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return len(args.Paths) == 3 &&
			args.Paths[0] == m.Path("a.yaml") &&
			args.Paths[1] == m.Path("b.yaml") &&
			args.Paths[2] == m.Path("more")
	})).Return(nil)

	err := execute("run", "a.yaml", "b.yaml", "more")
	require.NoError(t, err)

	mockWorkflow.AssertExpectations(t)
}

func TestRunCmd_OutputFlag(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	_, execute := newTestRunCmd(t, mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Reports == m.Path("out")
	})).Return(nil)

	err := execute("-o", "out", "run", "scenarios")
	require.NoError(t, err)

	mockWorkflow.AssertExpectations(t)
}

func TestRunCmd_RequiresScenarios(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	_, execute := newTestRunCmd(t, mockWorkflow)

	err := execute("run")
	require.Error(t, err)
}

func TestRunCmd_WorkflowError(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	errOut, execute := newTestRunCmd(t, mockWorkflow)

	runErr := errors.New("refine failed")
	mockWorkflow.EXPECT().Run(mock.Anything, mock.Anything).Return(runErr).Once()

	err := execute("run", "scenarios")
	require.ErrorIs(t, err, runErr)
	assert.Contains(t, errOut.String(), "refine failed")
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()

	assert.Equal(t, "run [scenarios...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, runLongDescription, cmd.Long)

	for _, name := range []string{
		runParallelFlagName, runSeedFlagName, selectiveFlagName, metricsFileFlagName,
		budgetTypeFlagName, budgetLimitFlagName, dseProbabilityFlagName,
		stringStrategyFlagName, referenceStrategyFlagName,
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}

	assert.Equal(t, "p", cmd.Flags().Lookup(runParallelFlagName).Shorthand)
}
