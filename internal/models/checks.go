package models

// CheckState represents the coarse state of a commit's CI signals
type CheckState string

const (
	CheckStatePending CheckState = "pending"
	CheckStateSuccess CheckState = "success"
	CheckStateFailure CheckState = "failure"
	CheckStateError   CheckState = "error"
)

// CheckDetail is one CI signal (a native check run or a legacy commit status)
// reported against a commit.
type CheckDetail struct {
	Name       string `json:"name"`
	Completed  bool   `json:"completed"`
	Conclusion string `json:"conclusion"`
}

// Failed checks if the signal completed with a failing conclusion
func (c CheckDetail) Failed() bool {
	if !c.Completed {
		return false
	}
	switch c.Conclusion {
	case "failure", "error", "cancelled", "timed_out", "action_required", "startup_failure":
		return true
	}
	return false
}

// Succeeded checks if the signal completed with a passing conclusion
func (c CheckDetail) Succeeded() bool {
	if !c.Completed {
		return false
	}
	switch c.Conclusion {
	case "success", "neutral", "skipped":
		return true
	}
	return false
}

// ChecksStatus is the aggregate view of all CI signals for one commit hash.
type ChecksStatus struct {
	State      CheckState    `json:"state"`
	Total      int           `json:"total"`
	Completed  int           `json:"completed"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Pending    int           `json:"pending"`
	Checks     []CheckDetail `json:"checks"`
}

// NewChecksStatus aggregates the given signals and derives the coarse state.
// Priority: any failed check wins, then any incomplete check, then all
// successful; anything else falls back to error as a defensive catch for
// inconsistent counts.
func NewChecksStatus(checks []CheckDetail) *ChecksStatus {
	status := &ChecksStatus{
		Total:  len(checks),
		Checks: checks,
	}

	for _, c := range checks {
		if !c.Completed {
			status.Pending++
			continue
		}
		status.Completed++
		if c.Failed() {
			status.Failed++
		} else if c.Succeeded() {
			status.Successful++
		}
	}

	switch {
	case status.Failed > 0:
		status.State = CheckStateFailure
	case status.Pending > 0:
		status.State = CheckStatePending
	case status.Successful == status.Total:
		status.State = CheckStateSuccess
	default:
		status.State = CheckStateError
	}

	return status
}
