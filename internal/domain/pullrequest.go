// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// BranchKind tells which release line a branch belongs to.
type BranchKind string

const (
	BranchProd BranchKind = "prod"
	BranchUAT  BranchKind = "uat"
)

// Branch is a target branch of pull requests together with the release line it feeds.
type Branch struct {
	Name string     `json:"name"`
	Kind BranchKind `json:"kind"`
}

// Label is the display label used in reports ("prod" or "uat").
func (b Branch) Label() string {
	return string(b.Kind)
}

// DefaultBranches returns the production and pre-production branches used when none are configured.
func DefaultBranches() []Branch {
	return []Branch{
		{Name: "master", Kind: BranchProd},
		{Name: "develop_uat", Kind: BranchUAT},
	}
}

// PullRequest is one closed pull request as fetched from GitHub.
// MergedAt is nil for pull requests closed without merging.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	MergedAt  *time.Time `json:"merged_at"`
	CreatedAt time.Time  `json:"created_at"`
	Branch    Branch     `json:"branch"`
}

// LeadTime returns the time from creation to merge.
// ok is false when either timestamp is missing or the interval is negative.
func (p PullRequest) LeadTime() (d time.Duration, ok bool) {
	if p.MergedAt == nil || p.CreatedAt.IsZero() {
		return 0, false
	}
	d = p.MergedAt.Sub(p.CreatedAt)
	if d < 0 {
		return 0, false
	}
	return d, true
}
