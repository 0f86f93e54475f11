package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/pkg"
)

// ReportsFile is the file name of the report journal inside the output directory.
const ReportsFile = "reports.gob"

// ErrNoReports is returned when the output directory holds no reports.
var ErrNoReports = errors.New("no reports found")

// ReportStore persists refinement reports.
type ReportStore interface {
	SaveReports(path m.Path, reports []m.Report) error
	LoadReports(path m.Path) ([]m.Report, error)
}

// JournalReportStore keeps reports in a gob journal under the output directory.
type JournalReportStore struct{}

// NewJournalReportStore returns a JournalReportStore.
func NewJournalReportStore() *JournalReportStore {
	return &JournalReportStore{}
}

// SaveReports implements ReportStore. Existing reports are replaced.
func (s *JournalReportStore) SaveReports(path m.Path, reports []m.Report) error {
	journal, err := pkg.CreateJournal[m.Report](filepath.Join(string(path), ReportsFile))
	if err != nil {
		return fmt.Errorf("failed to save reports: %w", err)
	}

	if err := journal.AppendBatch(reports); err != nil {
		_ = journal.Close()
		return fmt.Errorf("failed to save reports: %w", err)
	}

	if err := journal.Close(); err != nil {
		return fmt.Errorf("failed to save reports: %w", err)
	}

	slog.Info("Saved reports", "path", journal.Path(), "count", len(reports))

	return nil
}

// LoadReports implements ReportStore.
func (s *JournalReportStore) LoadReports(path m.Path) ([]m.Report, error) {
	file := filepath.Join(string(path), ReportsFile)

	journal, err := pkg.OpenJournal[m.Report](file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNoReports, path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	reports := make([]m.Report, 0, journal.Len())

	err = journal.Range(func(_ uint64, report m.Report) error {
		reports = append(reports, report)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	return reports, nil
}
