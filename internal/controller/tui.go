package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "climb.dev/pkg/climb/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
	improvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// recentLimit is how many completed scenarios the run view keeps on screen.
const recentLimit = 8

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program in the background.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.program != nil {
		return nil
	}

	cfg := startConfig(options)
	programOptions := []tea.ProgramOption{tea.WithOutput(p.output), tea.WithContext(ctx)}

	if cfg.mode == ModeView {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	p.program = tea.NewProgram(newModel(cfg.mode), programOptions...)
	p.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Debug("Terminal UI stopped", "error", err)
		}
	}(p.program, p.done)

	return nil
}

// Close stops the program and waits for it to restore the terminal.
func (p *TUI) Close(_ context.Context) {
	program, done := p.running()
	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user quits the program.
func (p *TUI) Wait(ctx context.Context) {
	_, done := p.running()
	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayRunInfo shows the run settings.
func (p *TUI) DisplayRunInfo(_ context.Context, info RunInfo) {
	p.send(runInfoMsg(info))
}

// DisplayStarted shows that a worker picked up a scenario.
func (p *TUI) DisplayStarted(_ context.Context, scenario string, worker int) {
	p.send(startedMsg{scenario: scenario, worker: worker})
}

// DisplayCompleted records the outcome of one scenario.
func (p *TUI) DisplayCompleted(_ context.Context, report m.Report) {
	p.send(completedMsg(report))
}

// DisplaySummary switches the run view to the final table.
func (p *TUI) DisplaySummary(_ context.Context, reports []m.Report) {
	p.send(summaryMsg(reports))
}

// DisplayReports shows stored reports in a scrollable view.
func (p *TUI) DisplayReports(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	program, _ := p.running()
	if program == nil {
		_, err := fmt.Fprint(p.output, strings.Join(reportLines(reports), "\n")+"\n")
		return err
	}

	program.Send(reportsMsg(reports))

	return nil
}

func (p *TUI) running() (*tea.Program, chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.program, p.done
}

func (p *TUI) send(msg tea.Msg) {
	if program, _ := p.running(); program != nil {
		program.Send(msg)
	}
}

type (
	runInfoMsg RunInfo
	startedMsg struct {
		scenario string
		worker   int
	}
	completedMsg m.Report
	summaryMsg   []m.Report
	reportsMsg   []m.Report
)

// model is the Bubble Tea model shared by the run and view modes.
type model struct {
	mode      StartMode
	info      RunInfo
	running   map[int]string
	completed []m.Report
	finished  bool
	lines     []string
	height    int
	width     int
	offset    int
	quitting  bool
	spinner   spinner.Model
	progress  progress.Model
}

func newModel(mode StartMode) model {
	return model{
		mode:     mode,
		running:  map[int]string{},
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (mo model) Init() tea.Cmd {
	if mo.mode == ModeRun {
		return mo.spinner.Tick
	}

	return nil
}

func (mo model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		mo.height = msg.Height
		mo.width = msg.Width

		return mo, nil

	case tea.KeyMsg:
		return mo.handleKeyPress(msg)

	case spinner.TickMsg:
		if mo.finished {
			return mo, nil
		}

		var cmd tea.Cmd
		mo.spinner, cmd = mo.spinner.Update(msg)

		return mo, cmd

	case runInfoMsg:
		mo.info = RunInfo(msg)

	case startedMsg:
		mo.running = cloneRunning(mo.running)
		mo.running[msg.worker] = msg.scenario

	case completedMsg:
		mo.running = cloneRunning(mo.running)
		for worker, scenario := range mo.running {
			if scenario == msg.Scenario {
				delete(mo.running, worker)
			}
		}

		mo.completed = append(slices.Clone(mo.completed), m.Report(msg))

	case summaryMsg:
		mo.finished = true
		mo.lines = strings.Split(strings.TrimRight(renderReportTable(msg), "\n"), "\n")
		mo.offset = 0

	case reportsMsg:
		mo.finished = true
		mo.lines = reportLines(msg)
		mo.offset = 0
	}

	return mo, nil
}

func (mo model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // only quit keys are handled by type
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		mo.quitting = true
		return mo, tea.Quit
	default:
	}

	switch msg.String() {
	case "q":
		mo.quitting = true
		return mo, tea.Quit

	case "down", "j":
		mo.offset = min(mo.offset+1, mo.maxOffset())

	case "up", "k":
		mo.offset = max(mo.offset-1, 0)

	case "g", "home":
		mo.offset = 0

	case "G", "end":
		mo.offset = mo.maxOffset()

	case "d", "pgdown":
		mo.offset = min(mo.offset+mo.linesPerPage(), mo.maxOffset())

	case "u", "pgup":
		mo.offset = max(mo.offset-mo.linesPerPage(), 0)
	}

	return mo, nil
}

func (mo model) linesPerPage() int {
	if mo.height == 0 {
		return len(mo.lines)
	}

	// Header box and footer.
	reserved := 7

	return max(mo.height-reserved, 1)
}

func (mo model) maxOffset() int {
	return max(len(mo.lines)-mo.linesPerPage(), 0)
}

func (mo model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Climb - Local Search"))
	b.WriteString("\n")

	if mo.mode == ModeRun && !mo.finished {
		mo.renderProgress(&b)
		return b.String()
	}

	if mo.finished && len(mo.lines) == 0 {
		b.WriteString("  No reports found\n")
		return b.String()
	}

	if mo.mode == ModeRun {
		mo.renderRecent(&b)
	}

	mo.renderLines(&b)

	return b.String()
}

func (mo model) renderProgress(b *strings.Builder) {
	mode := "standard"
	if mo.info.Selective {
		mode = "selective"
	}

	fmt.Fprintf(b, "  %d scenario(s), %d worker(s), %s search, budget %s\n\n",
		mo.info.Scenarios, mo.info.Threads, mode, mo.info.Budget)

	percent := 0.0
	if mo.info.Scenarios > 0 {
		percent = float64(len(mo.completed)) / float64(mo.info.Scenarios)
	}

	fmt.Fprintf(b, "  %s %d/%d\n\n", mo.progress.ViewAs(percent), len(mo.completed), mo.info.Scenarios)

	workers := make([]int, 0, len(mo.running))
	for worker := range mo.running {
		workers = append(workers, worker)
	}

	slices.Sort(workers)

	for _, worker := range workers {
		fmt.Fprintf(b, "  %s %s\n", mo.spinner.View(), mo.running[worker])
	}

	mo.renderRecent(b)
}

func (mo model) renderRecent(b *strings.Builder) {
	recent := mo.completed
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}

	for _, report := range recent {
		fmt.Fprintf(b, "  %s\n", completedLine(report))
	}

	if len(recent) > 0 {
		b.WriteString("\n")
	}
}

func (mo model) renderLines(b *strings.Builder) {
	visible := mo.lines
	if mo.height > 0 && len(mo.lines) > mo.linesPerPage() {
		end := min(mo.offset+mo.linesPerPage(), len(mo.lines))
		visible = mo.lines[mo.offset:end]
	}

	for _, line := range visible {
		fmt.Fprintf(b, "%s\n", line)
	}

	b.WriteString("\n")

	if len(visible) < len(mo.lines) {
		fmt.Fprintf(b, "  Lines %d-%d of %d\n", mo.offset+1, mo.offset+len(visible), len(mo.lines))
		b.WriteString(helpStyle.Render("  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit"))
	} else {
		b.WriteString(helpStyle.Render("  q: quit"))
	}

	b.WriteString("\n")
}

func completedLine(report m.Report) string {
	switch {
	case report.Error != "":
		return errorStyle.Render("✗ " + report.Scenario + ": " + report.Error)
	case report.Improved:
		return improvedStyle.Render(fmt.Sprintf("✓ %s: %.4f -> %.4f", report.Scenario, report.BeforeFitness, report.AfterFitness))
	default:
		return faintStyle.Render("· " + report.Scenario + ": unchanged")
	}
}

// reportLines renders stored reports as the diffs of the changed tests
// followed by the summary table.
func reportLines(reports []m.Report) []string {
	var lines []string

	for _, report := range reports {
		diff := codeDiff(report)
		if diff == "" {
			continue
		}

		lines = append(lines, completedLine(report))
		lines = append(lines, strings.Split(diff, "\n")...)
		lines = append(lines, "")
	}

	if len(reports) == 0 {
		return lines
	}

	return append(lines, strings.Split(strings.TrimRight(renderReportTable(reports), "\n"), "\n")...)
}

func cloneRunning(running map[int]string) map[int]string {
	clone := make(map[int]string, len(running)+1)
	for worker, scenario := range running {
		clone[worker] = scenario
	}

	return clone
}
