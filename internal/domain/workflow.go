package domain

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"pgregory.net/rand"

	"climb.dev/pkg/climb/internal/adapter"
	"climb.dev/pkg/climb/internal/controller"
	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/solver"
	"climb.dev/pkg/climb/internal/sut"
)

// RunArgs contains the arguments for refining scenarios.
type RunArgs struct {
	Paths   []m.Path
	Reports m.Path
	Threads int
	// Seed overrides the seed of every scenario when non-zero.
	Seed        uint64
	Config      Config
	BudgetType  BudgetType
	BudgetLimit int64
	MetricsFile string
}

// ViewArgs contains the arguments for viewing stored reports.
type ViewArgs struct {
	Reports m.Path
}

// Workflow drives local search over scenario files.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ScenarioStore
	adapter.ReportStore
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(scenarios adapter.ScenarioStore, reports adapter.ReportStore, ui controller.UI) Workflow {
	return &workflow{
		ScenarioStore: scenarios,
		ReportStore:   reports,
		UI:            ui,
	}
}

// runShared holds what every refinement of one run shares.
type runShared struct {
	args   RunArgs
	budget *LocalSearchBudget
	cache  *solver.Cache
	solver solver.Solver
	stats  *Stats
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	if err := args.Config.Validate(); err != nil {
		return fmt.Errorf("invalid search configuration: %w", err)
	}

	scenarios, err := w.LoadScenarios(args.Paths)
	if err != nil {
		slog.Error("Failed to load scenarios", "error", err)
		return fmt.Errorf("load scenarios: %w", err)
	}

	shared, err := newRunShared(args)
	if err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	w.DisplayRunInfo(ctx, controller.RunInfo{
		Scenarios: len(scenarios),
		Threads:   args.Threads,
		Selective: args.Config.Selective,
		Budget:    fmt.Sprintf("%d %s", args.BudgetLimit, args.BudgetType),
	})

	reports, err := w.refineAll(ctx, scenarios, shared)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to refine scenarios", "error", err)

		return fmt.Errorf("refine scenarios: %w", err)
	}

	w.DisplaySummary(ctx, reports)

	if err := w.SaveReports(args.Reports, reports); err != nil {
		w.Close(ctx)
		slog.Error("Failed to save reports", "error", err)

		return fmt.Errorf("save reports: %w", err)
	}

	if args.MetricsFile != "" {
		if err := shared.stats.WriteTextfile(args.MetricsFile); err != nil {
			w.Close(ctx)
			slog.Error("Failed to write metrics", "file", args.MetricsFile, "error", err)

			return err
		}
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

func newRunShared(args RunArgs) (*runShared, error) {
	budget, err := NewLocalSearchBudget(args.BudgetType, args.BudgetLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid budget: %w", err)
	}

	cache, err := solver.NewCache(solver.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	return &runShared{
		args:   args,
		budget: budget,
		cache:  cache,
		solver: solver.NewAVMSolver(),
		stats:  NewStats(),
	}, nil
}

func (w *workflow) refineAll(ctx context.Context, scenarios []m.Scenario, shared *runShared) ([]m.Report, error) {
	var (
		reports      []m.Report
		reportsMutex sync.Mutex
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if shared.args.Threads > 0 {
		group.SetLimit(shared.args.Threads)
	}

	for i, scenario := range scenarios {
		worker := i

		group.Go(func() error {
			w.DisplayStarted(groupCtx, scenario.Name, worker)

			report := refine(groupCtx, scenario, shared)

			w.DisplayCompleted(groupCtx, report)

			reportsMutex.Lock()
			reports = append(reports, report)
			reportsMutex.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(reports, func(a, b m.Report) int {
		return strings.Compare(a.Scenario, b.Scenario)
	})

	return reports, nil
}

// refine runs the local search on one scenario. Failures are recorded in
// the report rather than aborting the run.
func refine(ctx context.Context, scenario m.Scenario, shared *runShared) m.Report {
	start := time.Now()
	report := m.Report{Scenario: scenario.Name, Program: scenario.Program}

	program, ok := sut.Lookup(scenario.Program)
	if !ok {
		report.Error = fmt.Sprintf("%v: %s", adapter.ErrUnknownProgram, scenario.Program)
		return report
	}

	executor := adapter.NewProgramExecutor(program)
	objective := adapter.NewBranchObjective(executor, program.Branches, shared.budget)

	cfg := shared.args.Config
	if scenario.TargetClass != "" {
		cfg.TargetClass = scenario.TargetClass
	}

	seed := shared.args.Seed
	if seed == 0 {
		seed = scenario.Seed
	}

	env := &Env{
		Objective: objective,
		Budget:    shared.budget,
		Factory:   adapter.NewProgramFactory(program),
		Concolic:  executor,
		Solver:    shared.solver,
		Cache:     shared.cache,
		Rand:      rand.New(seed),
		Config:    cfg,
		Stats:     shared.stats,
	}

	c := m.NewCandidate(scenario.Test.Clone())
	c.History = slices.Clone(scenario.History)
	report.CandidateID = c.ID
	report.BeforeCode = c.Test.Code()

	if _, err := executor.Execute(ctx, c.Test); err != nil {
		slog.Error("Failed to execute scenario", "scenario", scenario.Name, "error", err)
		report.Error = err.Error()

		return report
	}

	objective.Fitness(ctx, c)
	baseline := c.LastResult

	objective.Focus(objective.Uncovered(baseline))
	c.ClearCachedResults()
	report.BeforeFitness = objective.Fitness(ctx, c)

	report.Improved = NewTestSearch(cfg, CoverageScope{}).Search(ctx, env, c)
	report.AfterFitness = objective.Fitness(ctx, c)
	report.AfterCode = c.Test.Code()
	report.CoveredGoals = objective.CoveredGoals(baseline, c.LastResult)
	report.TotalGoals = objective.TotalGoals()
	report.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		report.Error = err.Error()
	}

	slog.Info("Refined scenario",
		"scenario", scenario.Name,
		"before", report.BeforeFitness,
		"after", report.AfterFitness,
		"covered", report.CoveredGoals,
		"total", report.TotalGoals)

	return report
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	reports, err := w.LoadReports(args.Reports)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to load reports", "path", args.Reports, "error", err)

		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.DisplayReports(ctx, reports); err != nil {
		w.Close(ctx)
		return fmt.Errorf("display reports: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}
