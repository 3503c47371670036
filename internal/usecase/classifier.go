package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/naka-gawa/release-stats/internal/domain"
)

const (
	fastReleaseMarker = "release/fast/"
	rcReleaseMarker   = "Release/rc "
	minTeamNameLength = 3
)

// Classify attributes a pull request to a team and a release cadence.
//
// Production titles look like "<prefix>_<team>_<task>..." and are fast when they
// contain "release/fast/". UAT titles carry the team right after "Release/rc "
// and are always slow. Classify never fails: unrecognised titles come back
// with Team set to domain.UnknownTeam and a Reason.
func Classify(pr domain.PullRequest) domain.Classification {
	var (
		token   string
		found   bool
		cadence = domain.CadenceSlow
	)

	switch pr.Branch.Kind {
	case domain.BranchProd:
		token, found = prodTeamToken(pr.Title)
		if strings.Contains(pr.Title, fastReleaseMarker) {
			cadence = domain.CadenceFast
		}
	case domain.BranchUAT:
		token, found = uatTeamToken(pr.Title)
	default:
		return unclassified(cadence, domain.ReasonUnknownBranch)
	}

	if !found {
		return unclassified(cadence, domain.ReasonNoTeamToken)
	}

	return eligible(NormalizeTeam(token, pr.Title), cadence)
}

// ClassifyAll classifies every pull request, keeping order.
func ClassifyAll(prs []domain.PullRequest) []domain.ClassifiedPullRequest {
	out := make([]domain.ClassifiedPullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, domain.ClassifiedPullRequest{PullRequest: pr, Classification: Classify(pr)})
	}
	return out
}

// Reclassify re-applies normalization and the eligibility rules to a record
// whose team was stored earlier, such as one read back from a records file.
func Reclassify(rec domain.ClassifiedPullRequest) domain.ClassifiedPullRequest {
	cadence := domain.CadenceSlow
	if rec.Cadence == domain.CadenceFast {
		cadence = domain.CadenceFast
	}

	if rec.Branch.Kind != domain.BranchProd && rec.Branch.Kind != domain.BranchUAT {
		rec.Classification = unclassified(cadence, domain.ReasonUnknownBranch)
		return rec
	}
	rec.Classification = eligible(NormalizeTeam(rec.Team, rec.Title), cadence)
	return rec
}

// NormalizeTeam maps legacy and shared team tokens to their current names.
// Matching is case-insensitive; unmatched tokens are returned unchanged.
func NormalizeTeam(token, title string) string {
	switch strings.ToLower(token) {
	case "mpnl":
		return "coreportal"
	case "fox":
		return "platypus"
	case "salescpq":
		lowerTitle := strings.ToLower(title)
		switch {
		case strings.Contains(lowerTitle, "sfka"):
			return "koalas"
		case strings.Contains(lowerTitle, "sfjr"):
			return "jaguar"
		}
	}
	return token
}

// prodTeamToken returns the second "_" separated field of title.
func prodTeamToken(title string) (string, bool) {
	fields := strings.SplitN(title, "_", 3)
	if len(fields) < 2 {
		return "", false
	}
	team, _, _ := strings.Cut(fields[1], "_")
	return team, true
}

// uatTeamToken returns the word that follows the first "Release/rc " marker.
func uatTeamToken(title string) (string, bool) {
	_, rest, found := strings.Cut(title, rcReleaseMarker)
	if !found {
		return "", false
	}
	if i := strings.Index(rest, rcReleaseMarker); i >= 0 {
		rest = rest[:i]
	}
	team, _, _ := strings.Cut(rest, " ")
	return team, true
}

// eligible accepts team unless it is the unknown sentinel or too short to be a real name.
func eligible(team string, cadence domain.Cadence) domain.Classification {
	switch {
	case team == domain.UnknownTeam:
		return unclassified(cadence, domain.ReasonUnknownTeam)
	case utf8.RuneCountInString(team) < minTeamNameLength:
		return unclassified(cadence, domain.ReasonTeamTooShort)
	}
	return domain.Classification{Team: team, Cadence: cadence}
}

func unclassified(cadence domain.Cadence, reason domain.UnclassifiedReason) domain.Classification {
	return domain.Classification{Team: domain.UnknownTeam, Cadence: cadence, Reason: reason}
}
