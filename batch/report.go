package batch

import (
	"sync"
	"time"
)

type Outcome string

const (
	OutcomeWritten         Outcome = "written"
	OutcomeSkippedNonEmpty Outcome = "skipped_non_empty"
	OutcomeSkippedNoValue  Outcome = "skipped_no_value"
	OutcomeFailed          Outcome = "failed"
)

// Result is the outcome of syncing one SmartData element of a record
type Result struct {
	ProjectId string  `json:"projectId"`
	RecordId  string  `json:"recordId"`
	Target    string  `json:"target"`
	Outcome   Outcome `json:"outcome"`
	Reason    string  `json:"reason,omitempty"`
}

// Report summarizes a run. Failures keeps at most maxReportedFailures results.
type Report struct {
	RunId      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Error      string    `json:"error,omitempty"`

	Projects        int `json:"projects"`
	ProjectsSkipped int `json:"projectsSkipped"`
	ProjectsFailed  int `json:"projectsFailed"`

	Records                  int `json:"records"`
	RecordsWithoutIdentifier int `json:"recordsWithoutIdentifier"`

	Written         int `json:"written"`
	SkippedNonEmpty int `json:"skippedNonEmpty"`
	SkippedNoValue  int `json:"skippedNoValue"`
	Failed          int `json:"failed"`

	Failures []Result `json:"failures,omitempty"`
}

const maxReportedFailures = 100

type reportBuilder struct {
	mu     sync.Mutex
	report Report
}

func newReportBuilder(runId string, startedAt time.Time) *reportBuilder {
	return &reportBuilder{
		report: Report{
			RunId:     runId,
			StartedAt: startedAt,
		},
	}
}

func (r *reportBuilder) update(fn func(report *Report)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.report)
}

func (r *reportBuilder) addResult(result Result) {
	r.update(func(report *Report) {
		switch result.Outcome {
		case OutcomeWritten:
			report.Written++
		case OutcomeSkippedNonEmpty:
			report.SkippedNonEmpty++
		case OutcomeSkippedNoValue:
			report.SkippedNoValue++
		case OutcomeFailed:
			report.Failed++
			if len(report.Failures) < maxReportedFailures {
				report.Failures = append(report.Failures, result)
			}
		}
	})
}

func (r *reportBuilder) finish(finishedAt time.Time) Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.FinishedAt = finishedAt
	return r.report
}
