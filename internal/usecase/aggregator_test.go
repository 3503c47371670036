package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/release-stats/internal/domain"
)

func classified(number int, title string, branch domain.Branch) domain.ClassifiedPullRequest {
	pr := domain.PullRequest{Number: number, Title: title, Branch: branch}
	return domain.ClassifiedPullRequest{PullRequest: pr, Classification: Classify(pr)}
}

func sampleRecords() []domain.ClassifiedPullRequest {
	return []domain.ClassifiedPullRequest{
		classified(1, "Rel_alpha_1_release/fast/a", prodBranch),
		classified(2, "Rel_beta_2", prodBranch),
		classified(3, "Release/rc alpha build 3", uatBranch),
		classified(4, "no team here", prodBranch),
		classified(5, "Rel_alpha_5", prodBranch),
		classified(6, "Release/rc x 6", uatBranch),
	}
}

func TestAggregate(t *testing.T) {
	teams := Aggregate(sampleRecords())

	require.Equal(t, 2, teams.Len())
	list := teams.Teams()
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)

	alpha, ok := teams.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, &domain.TeamAggregate{
		Name:     "alpha",
		Total:    3,
		Fast:     1,
		Slow:     2,
		Prod:     2,
		Branches: []string{"prod", "uat"},
		Titles:   []string{"Rel_alpha_1_release/fast/a", "Release/rc alpha build 3", "Rel_alpha_5"},
	}, alpha)

	beta, _ := teams.Lookup("beta")
	assert.Equal(t, 1, beta.Total)
	assert.Equal(t, []string{"prod"}, beta.Branches)

	assert.Equal(t, 3, teams.ProdTotal)
	assert.Equal(t, 1, teams.UATTotal)
	assert.Equal(t, 2, teams.Dropped)
	assert.Equal(t, map[domain.UnclassifiedReason]int{
		domain.ReasonNoTeamToken:  1,
		domain.ReasonTeamTooShort: 1,
	}, teams.DroppedByReason)
}

func TestAggregate_Invariants(t *testing.T) {
	teams := Aggregate(sampleRecords())
	for _, team := range teams.Teams() {
		assert.Equal(t, team.Total, team.Fast+team.Slow, team.Name)
		assert.LessOrEqual(t, team.Prod, team.Total, team.Name)
		assert.Len(t, team.Titles, team.Total, team.Name)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	records := sampleRecords()
	first := Aggregate(records)
	second := Aggregate(records)
	assert.Equal(t, first, second)
}

func TestAggregate_Empty(t *testing.T) {
	teams := Aggregate(nil)
	assert.Equal(t, 0, teams.Len())
	assert.Empty(t, teams.Teams())
	assert.Zero(t, teams.Dropped)
}

func TestAggregate_LeadTimes(t *testing.T) {
	created := time.Date(2024, 9, 24, 8, 0, 0, 0, time.UTC)
	withTimes := func(number int, title string, hours int) domain.ClassifiedPullRequest {
		rec := classified(number, title, prodBranch)
		rec.CreatedAt = created
		rec.MergedAt = mergedAt(created.Add(time.Duration(hours) * time.Hour))
		return rec
	}
	records := []domain.ClassifiedPullRequest{
		withTimes(1, "Rel_alpha_1", 1),
		withTimes(2, "Rel_alpha_2", 3),
		classified(3, "Rel_alpha_3", prodBranch),
	}

	teams := Aggregate(records)
	alpha, _ := teams.Lookup("alpha")
	assert.Equal(t, []float64{1, 3}, alpha.LeadTimeHours)
}
