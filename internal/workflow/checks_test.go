package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kr1x/gh-renovate/internal/models"
)

func TestCheckEvaluatorStatesAreMutuallyExclusive(t *testing.T) {
	testCases := []struct {
		name   string
		checks []models.CheckDetail
	}{
		{
			name:   "no checks",
			checks: nil,
		},
		{
			name: "all green",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "success"},
				{Name: "test", Completed: true, Conclusion: "skipped"},
			},
		},
		{
			name: "one running",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "success"},
				{Name: "test", Completed: false},
			},
		},
		{
			name: "one failed while another runs",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "failure"},
				{Name: "test", Completed: false},
			},
		},
		{
			name: "completed with unrecognized conclusion",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "mystery"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status := models.NewChecksStatus(tc.checks)

			assert.False(t, ChecksPassing(status) && ChecksFailing(status),
				"passing and failing must be mutually exclusive")

			holds := 0
			for _, state := range []models.CheckState{
				models.CheckStateSuccess,
				models.CheckStatePending,
				models.CheckStateFailure,
				models.CheckStateError,
			} {
				if status.State == state {
					holds++
				}
			}
			assert.Equal(t, 1, holds, "exactly one coarse state must hold")
		})
	}
}

func TestCheckEvaluatorCoarseStates(t *testing.T) {
	testCases := []struct {
		name     string
		checks   []models.CheckDetail
		expected models.CheckState
	}{
		{
			name: "failure wins over pending",
			checks: []models.CheckDetail{
				{Name: "lint", Completed: true, Conclusion: "failure"},
				{Name: "test", Completed: false},
			},
			expected: models.CheckStateFailure,
		},
		{
			name: "pending wins over success",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "success"},
				{Name: "test", Completed: false},
			},
			expected: models.CheckStatePending,
		},
		{
			name: "all successful",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "success"},
			},
			expected: models.CheckStateSuccess,
		},
		{
			name: "inconsistent conclusions fall back to error",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "mystery"},
			},
			expected: models.CheckStateError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status := models.NewChecksStatus(tc.checks)
			assert.Equal(t, tc.expected, status.State)
		})
	}
}

func TestFormatCheckFailures(t *testing.T) {
	status := models.NewChecksStatus([]models.CheckDetail{
		{Name: "build", Completed: true, Conclusion: "success"},
		{Name: "lint", Completed: true, Conclusion: "failure"},
		{Name: "e2e", Completed: true, Conclusion: "cancelled"},
		{Name: "deploy", Completed: true, Conclusion: "timed_out"},
	})

	formatted := FormatCheckFailures(status)

	assert.Contains(t, formatted, "lint (failure)")
	assert.Contains(t, formatted, "e2e (cancelled)")
	assert.Contains(t, formatted, "deploy (timed_out)")
	assert.NotContains(t, formatted, "build")
}

func TestFormatCheckFailuresSentinel(t *testing.T) {
	status := models.NewChecksStatus([]models.CheckDetail{
		{Name: "build", Completed: true, Conclusion: "success"},
	})

	assert.Equal(t, NoFailedChecks, FormatCheckFailures(status))
}

func TestHasIndefinitelyPendingCheck(t *testing.T) {
	ignorable := []string{"renovate/stability-days"}

	testCases := []struct {
		name     string
		checks   []models.CheckDetail
		expected bool
	}{
		{
			name: "stability check still pending",
			checks: []models.CheckDetail{
				{Name: "renovate/stability-days", Completed: false},
			},
			expected: true,
		},
		{
			name: "stability check pending among failures",
			checks: []models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "failure"},
				{Name: "renovate/stability-days", Completed: false},
			},
			expected: true,
		},
		{
			name: "stability check completed",
			checks: []models.CheckDetail{
				{Name: "renovate/stability-days", Completed: true, Conclusion: "success"},
				{Name: "build", Completed: false},
			},
			expected: false,
		},
		{
			name: "unrelated pending check",
			checks: []models.CheckDetail{
				{Name: "build", Completed: false},
			},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status := models.NewChecksStatus(tc.checks)
			assert.Equal(t, tc.expected, HasIndefinitelyPendingCheck(status, ignorable))
		})
	}
}
