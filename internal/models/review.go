package models

import "time"

// Review state strings reported by GitHub.
const (
	ReviewStateApproved         = "APPROVED"
	ReviewStateChangesRequested = "CHANGES_REQUESTED"
	ReviewStateDismissed        = "DISMISSED"
	ReviewStateCommented        = "COMMENTED"
)

// Review is one submitted review on a pull request.
type Review struct {
	Reviewer    string    `json:"reviewer"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewInfo is the per-PR approval aggregate. Only the most recent
// meaningful state per reviewer counts; plain comments are ignored.
type ReviewInfo struct {
	Approved   bool     `json:"approved"`
	Approvers  []string `json:"approvers"`
	Requesters []string `json:"requesters"`
}

// NewReviewInfo collapses a review history into the approval aggregate.
// Reviews are expected in submission order; a later meaningful review by the
// same reviewer replaces their earlier one.
func NewReviewInfo(reviews []Review) *ReviewInfo {
	latest := make(map[string]string)
	var order []string

	for _, r := range reviews {
		switch r.State {
		case ReviewStateApproved, ReviewStateChangesRequested, ReviewStateDismissed:
		default:
			continue
		}
		if _, seen := latest[r.Reviewer]; !seen {
			order = append(order, r.Reviewer)
		}
		latest[r.Reviewer] = r.State
	}

	info := &ReviewInfo{}
	for _, reviewer := range order {
		switch latest[reviewer] {
		case ReviewStateApproved:
			info.Approved = true
			info.Approvers = append(info.Approvers, reviewer)
		case ReviewStateChangesRequested:
			info.Requesters = append(info.Requesters, reviewer)
		}
	}
	return info
}
