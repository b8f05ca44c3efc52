package workflow

import (
	"fmt"
	"strings"

	"github.com/kr1x/gh-renovate/internal/models"
)

// NoFailedChecks is the sentinel returned by FormatCheckFailures when
// nothing failed.
const NoFailedChecks = "no failed checks"

// ChecksPassing checks if every CI signal completed successfully
func ChecksPassing(status *models.ChecksStatus) bool {
	return status.State == models.CheckStateSuccess
}

// ChecksPending checks if any CI signal is still running
func ChecksPending(status *models.ChecksStatus) bool {
	return status.State == models.CheckStatePending
}

// ChecksFailing checks if the CI signals are in a failing or inconsistent state
func ChecksFailing(status *models.ChecksStatus) bool {
	return status.State == models.CheckStateFailure || status.State == models.CheckStateError
}

// FormatCheckFailures joins every failed check's name and conclusion into a
// display string, or the NoFailedChecks sentinel if nothing failed.
func FormatCheckFailures(status *models.ChecksStatus) string {
	var parts []string
	for _, c := range status.Checks {
		if c.Failed() {
			parts = append(parts, fmt.Sprintf("%s (%s)", c.Name, c.Conclusion))
		}
	}
	if len(parts) == 0 {
		return NoFailedChecks
	}
	return strings.Join(parts, ", ")
}

// HasIndefinitelyPendingCheck reports whether any incomplete check matches
// the ignorable-check list. Such checks are policy gates that may never
// resolve on their own, so waiting on them is a deliberate skip rather than
// a timeout.
func HasIndefinitelyPendingCheck(status *models.ChecksStatus, ignorable []string) bool {
	for _, c := range status.Checks {
		if c.Completed {
			continue
		}
		for _, name := range ignorable {
			if c.Name == name {
				return true
			}
		}
	}
	return false
}
