package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "climb.dev/pkg/climb/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRunInfo shows the run settings.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, info RunInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	mode := "standard"
	if info.Selective {
		mode = "selective"
	}

	s.printf("Refining %d scenario(s) with %d worker(s) (%s search, budget %s)\n", info.Scenarios, info.Threads, mode, info.Budget)
}

// DisplayStarted shows that a scenario is being refined.
func (s *SimpleUI) DisplayStarted(ctx context.Context, scenario string, _ int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Starting %s\n", scenario)
}

// DisplayCompleted shows the outcome of one scenario and the change made to its test.
func (s *SimpleUI) DisplayCompleted(ctx context.Context, report m.Report) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Completed %s -> %s\n", report.Scenario, reportStatus(report))

	if diff := codeDiff(report); diff != "" {
		s.printf("%s\n", diff)
	}
}

// DisplaySummary prints the table of all reports.
func (s *SimpleUI) DisplaySummary(ctx context.Context, reports []m.Report) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderReportTable(reports))
}

// DisplayReports prints stored reports with their diffs.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, report := range reports {
		if diff := codeDiff(report); diff != "" {
			s.printf("%s\n\n", diff)
		}
	}

	s.printf("%s", renderReportTable(reports))

	return nil
}

func renderReportTable(reports []m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Scenario", "Program", "Before", "After", "Goals", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
	})

	improved := 0

	for _, report := range reports {
		if report.Improved {
			improved++
		}

		table.Append([]string{
			report.Scenario,
			report.Program,
			fmt.Sprintf("%.4f", report.BeforeFitness),
			fmt.Sprintf("%.4f", report.AfterFitness),
			fmt.Sprintf("%d/%d", report.CoveredGoals, report.TotalGoals),
			reportStatus(report),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(reports)),
		"", "", "", "",
		fmt.Sprintf("%d improved", improved),
	})

	table.Render()

	return tableBuffer.String()
}

func reportStatus(report m.Report) string {
	switch {
	case report.Error != "":
		return "error: " + report.Error
	case report.Improved:
		return "improved"
	default:
		return "unchanged"
	}
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
