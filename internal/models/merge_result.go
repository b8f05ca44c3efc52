package models

// MergeOutcome represents the terminal outcome of one pull request
type MergeOutcome string

const (
	OutcomeMerged  MergeOutcome = "merged"
	OutcomeSkipped MergeOutcome = "skipped"
	OutcomeFailed  MergeOutcome = "failed"
)

// MergeCommit is the host's answer to a successful merge call.
type MergeCommit struct {
	SHA    string `json:"sha"`
	Merged bool   `json:"merged"`
}

// MergeResult is the terminal record for one pull request in a batch.
// Immutable once produced.
type MergeResult struct {
	PRNumber int          `json:"pr_number"`
	Title    string       `json:"title"`
	Outcome  MergeOutcome `json:"outcome"`
	Reason   string       `json:"reason,omitempty"`
}

// BatchSummary aggregates the outcomes of one batch run.
type BatchSummary struct {
	Processed int           `json:"processed"`
	Merged    int           `json:"merged"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	DryRun    bool          `json:"dry_run"`
	Results   []MergeResult `json:"results"`
}

// Record appends a finalized result and updates the counters
func (s *BatchSummary) Record(r MergeResult) {
	s.Processed++
	switch r.Outcome {
	case OutcomeMerged:
		s.Merged++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// HasFailures checks if any pull request ended in a failed outcome
func (s *BatchSummary) HasFailures() bool {
	return s.Failed > 0
}
