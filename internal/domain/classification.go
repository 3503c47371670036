package domain

// UnknownTeam is the team name given to pull requests that could not be attributed to a team.
const UnknownTeam = "Unknown"

// Cadence is the release cadence of a merge.
type Cadence string

const (
	CadenceFast Cadence = "fast"
	CadenceSlow Cadence = "slow"
)

// UnclassifiedReason explains why a pull request has no team.
type UnclassifiedReason string

const (
	ReasonNoTeamToken   UnclassifiedReason = "no-team-token"
	ReasonTeamTooShort  UnclassifiedReason = "team-too-short"
	ReasonUnknownTeam   UnclassifiedReason = "unknown-team"
	ReasonUnknownBranch UnclassifiedReason = "unknown-branch"
)

// Classification is the result of attributing a pull request title to a team.
// Team is UnknownTeam whenever Reason is set.
type Classification struct {
	Team    string             `json:"team"`
	Cadence Cadence            `json:"cadence"`
	Reason  UnclassifiedReason `json:"reason,omitempty"`
}

// Classified reports whether a team was recognised.
func (c Classification) Classified() bool {
	return c.Reason == ""
}

// ClassifiedPullRequest is a pull request together with its classification.
type ClassifiedPullRequest struct {
	PullRequest
	Classification
}
