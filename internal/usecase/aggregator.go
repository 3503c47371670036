// Package usecase contains the business logic of the application.
package usecase

import (
	"github.com/naka-gawa/release-stats/internal/domain"
)

// Aggregate folds classified pull requests into per-team statistics.
// Unclassified records are counted in Dropped and otherwise ignored.
// The result depends only on the input order, so equal inputs give equal maps.
func Aggregate(records []domain.ClassifiedPullRequest) *domain.AggregateMap {
	teams := domain.NewAggregateMap()

	for _, rec := range records {
		if !rec.Classified() {
			teams.Dropped++
			teams.DroppedByReason[rec.Reason]++
			continue
		}

		team := teams.Team(rec.Team)
		label := rec.Branch.Label()

		team.Total++
		if rec.Cadence == domain.CadenceFast {
			team.Fast++
		} else {
			team.Slow++
		}
		switch rec.Branch.Kind {
		case domain.BranchProd:
			team.Prod++
			teams.ProdTotal++
		case domain.BranchUAT:
			teams.UATTotal++
		}
		if !team.HasBranch(label) {
			team.Branches = append(team.Branches, label)
		}
		team.Titles = append(team.Titles, rec.Title)
		if d, ok := rec.LeadTime(); ok {
			team.LeadTimeHours = append(team.LeadTimeHours, d.Hours())
		}
	}

	return teams
}
