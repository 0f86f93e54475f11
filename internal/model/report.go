package model

import "time"

// Report is the outcome of refining one scenario.
type Report struct {
	Scenario      string
	Program       string
	CandidateID   string
	BeforeCode    string
	AfterCode     string
	BeforeFitness float64
	AfterFitness  float64
	Improved      bool
	CoveredGoals  int
	TotalGoals    int
	Duration      time.Duration
	Error         string
}

// Coverage returns the covered share of goals in [0, 1].
func (r Report) Coverage() float64 {
	if r.TotalGoals == 0 {
		return 0
	}

	return float64(r.CoveredGoals) / float64(r.TotalGoals)
}
