package models

// Mergeable state strings reported by GitHub for a pull request.
const (
	MergeableStateBehind  = "behind"
	MergeableStateDirty   = "dirty"
	MergeableStateClean   = "clean"
	MergeableStateBlocked = "blocked"
	MergeableStateUnknown = "unknown"
)

// PullRequest is an immutable snapshot of a pull request as reported by
// GitHub. A snapshot is never mutated; any state change requires fetching a
// new one.
type PullRequest struct {
	Number         int      `json:"number"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	State          string   `json:"state"`
	Merged         bool     `json:"merged"`
	Draft          bool     `json:"draft"`
	Mergeable      *bool    `json:"mergeable"`
	MergeableState string   `json:"mergeable_state"`
	HeadSHA        string   `json:"head_sha"`
	HeadRef        string   `json:"head_ref"`
	BaseRef        string   `json:"base_ref"`
	Author         string   `json:"author"`
	Labels         []string `json:"labels"`
}

// IsOpen checks if the pull request is open
func (pr *PullRequest) IsOpen() bool {
	return pr.State == "open"
}

// HasConflicts checks if the pull request is in a conflicting state
func (pr *PullRequest) HasConflicts() bool {
	return pr.MergeableState == MergeableStateDirty
}

// NeedsRebase reports whether the branch must be brought up to date before a
// merge can succeed: GitHub marks it behind, dirty, or explicitly not
// mergeable.
func (pr *PullRequest) NeedsRebase() bool {
	if pr.MergeableState == MergeableStateBehind || pr.MergeableState == MergeableStateDirty {
		return true
	}
	return pr.Mergeable != nil && !*pr.Mergeable
}

// HasLabel checks if the pull request carries the given label
func (pr *PullRequest) HasLabel(name string) bool {
	for _, l := range pr.Labels {
		if l == name {
			return true
		}
	}
	return false
}
