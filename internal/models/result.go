package models

// RecordStatus is the outcome of processing one record.
type RecordStatus string

const (
	StatusSent     RecordStatus = "sent"     // rendered and mailed
	StatusRendered RecordStatus = "rendered" // rendered, no recipient address
	StatusFailed   RecordStatus = "failed"
	StatusSkipped  RecordStatus = "skipped" // not reached, the batch was cancelled
)

// Stage names the step in which a record failed.
type Stage string

const (
	StageRender   Stage = "render"
	StageDispatch Stage = "dispatch"
)

// RecordResult holds the outcome of one record's render and dispatch attempt.
type RecordResult struct {
	Row        int
	EmployeeID string
	Name       string
	Email      string
	Status     RecordStatus
	Stage      Stage  // Stage is set for failed records only.
	Path       string // Path is the rendered payslip, empty if rendering failed.
	Err        error
}

// BatchSummary collects the results of one run in source order.
type BatchSummary struct {
	Results []RecordResult
}

// Count returns the number of results with the given status.
func (s BatchSummary) Count(status RecordStatus) int {
	var n int
	for _, res := range s.Results {
		if res.Status == status {
			n++
		}
	}

	return n
}

// Failed returns the failed results.
func (s BatchSummary) Failed() []RecordResult {
	var failed []RecordResult
	for _, res := range s.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}

	return failed
}

// Total returns the number of records seen by the run.
func (s BatchSummary) Total() int {
	return len(s.Results)
}
