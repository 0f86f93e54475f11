// Package controller provides output adapters for displaying local search progress and reports.
package controller

import (
	"context"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "climb.dev/pkg/climb/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRunMode sets the UI to refinement mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithViewMode sets the UI to report viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func startConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// RunInfo describes a refinement run before it starts.
type RunInfo struct {
	Scenarios int
	Threads   int
	Selective bool
	Budget    string
}

// UI defines the interface for displaying refinement progress and reports.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayRunInfo(ctx context.Context, info RunInfo)
	DisplayStarted(ctx context.Context, scenario string, worker int)
	DisplayCompleted(ctx context.Context, report m.Report)
	DisplaySummary(ctx context.Context, reports []m.Report)
	DisplayReports(ctx context.Context, reports []m.Report) error
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewUI returns the interactive UI on a terminal and the plain one otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// codeDiff renders the change a refinement made to a test as a unified diff.
func codeDiff(report m.Report) string {
	if report.BeforeCode == report.AfterCode {
		return ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(report.BeforeCode + "\n"),
		B:        difflib.SplitLines(report.AfterCode + "\n"),
		FromFile: report.Scenario + " (before)",
		ToFile:   report.Scenario + " (after)",
		Context:  2,
	})
	if err != nil {
		return ""
	}

	return strings.TrimRight(diff, "\n")
}
