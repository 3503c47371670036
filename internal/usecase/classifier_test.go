package usecase

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/naka-gawa/release-stats/internal/domain"
)

var (
	prodBranch = domain.Branch{Name: "master", Kind: domain.BranchProd}
	uatBranch  = domain.Branch{Name: "develop_uat", Kind: domain.BranchUAT}
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		title  string
		branch domain.Branch
		expect domain.Classification
	}{
		{
			name:   "prod fast release",
			title:  "Rel_teamx_1234_release/fast/foo",
			branch: prodBranch,
			expect: domain.Classification{Team: "teamx", Cadence: domain.CadenceFast},
		},
		{
			name:   "prod slow release",
			title:  "Rel_teamx_1234 hotfix",
			branch: prodBranch,
			expect: domain.Classification{Team: "teamx", Cadence: domain.CadenceSlow},
		},
		{
			name:   "prod title without delimiter",
			title:  "Bump dependencies",
			branch: prodBranch,
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceSlow, Reason: domain.ReasonNoTeamToken},
		},
		{
			name:   "prod title with a single delimiter",
			title:  "Rel_omega",
			branch: prodBranch,
			expect: domain.Classification{Team: "omega", Cadence: domain.CadenceSlow},
		},
		{
			name:   "prod team too short",
			title:  "Rel_ab_12 release/fast/x",
			branch: prodBranch,
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceFast, Reason: domain.ReasonTeamTooShort},
		},
		{
			name:   "prod empty team",
			title:  "Rel__12",
			branch: prodBranch,
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceSlow, Reason: domain.ReasonTeamTooShort},
		},
		{
			name:   "uat release",
			title:  "Release/rc alpha build 7",
			branch: uatBranch,
			expect: domain.Classification{Team: "alpha", Cadence: domain.CadenceSlow},
		},
		{
			name:   "uat is never fast",
			title:  "Release/rc alpha release/fast/x",
			branch: uatBranch,
			expect: domain.Classification{Team: "alpha", Cadence: domain.CadenceSlow},
		},
		{
			name:   "uat team is the last word",
			title:  "chore: Release/rc bravo",
			branch: uatBranch,
			expect: domain.Classification{Team: "bravo", Cadence: domain.CadenceSlow},
		},
		{
			name:   "uat marker repeated",
			title:  "Release/rc charlieRelease/rc delta",
			branch: uatBranch,
			expect: domain.Classification{Team: "charlie", Cadence: domain.CadenceSlow},
		},
		{
			name:   "uat marker missing",
			title:  "release/rc alpha",
			branch: uatBranch,
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceSlow, Reason: domain.ReasonNoTeamToken},
		},
		{
			name:   "literal unknown team",
			title:  "Release/rc Unknown build",
			branch: uatBranch,
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceSlow, Reason: domain.ReasonUnknownTeam},
		},
		{
			name:   "unconfigured branch",
			title:  "Rel_teamx_1",
			branch: domain.Branch{Name: "feature", Kind: "feature"},
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceSlow, Reason: domain.ReasonUnknownBranch},
		},
		{
			name:   "normalized after extraction",
			title:  "Rel_MPNL_77",
			branch: prodBranch,
			expect: domain.Classification{Team: "coreportal", Cadence: domain.CadenceSlow},
		},
		{
			name:   "alias normalized on the uat branch",
			title:  "Release/rc fox 3",
			branch: uatBranch,
			expect: domain.Classification{Team: "platypus", Cadence: domain.CadenceSlow},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(domain.PullRequest{Title: tc.title, Branch: tc.branch})
			assert.Equal(t, tc.expect, got)
			assert.Equal(t, tc.expect.Reason == "", got.Classified())
		})
	}
}

func TestNormalizeTeam(t *testing.T) {
	testCases := []struct {
		token, title, expect string
	}{
		{token: "mpnl", title: "", expect: "coreportal"},
		{token: "Mpnl", title: "", expect: "coreportal"},
		{token: "FOX", title: "", expect: "platypus"},
		{token: "salescpq", title: "Rel_salescpq_SFKA-001", expect: "koalas"},
		{token: "SalesCPQ", title: "Rel_SalesCPQ_sfjr-9", expect: "jaguar"},
		{token: "salescpq", title: "Rel_salescpq_SFKA_SFJR", expect: "koalas"},
		{token: "salescpq", title: "Rel_salescpq_other", expect: "salescpq"},
		{token: "Alpha", title: "", expect: "Alpha"},
	}

	for _, tc := range testCases {
		t.Run(tc.token+"/"+tc.title, func(t *testing.T) {
			assert.Equal(t, tc.expect, NormalizeTeam(tc.token, tc.title))
		})
	}
}

// TestClassify_Properties checks the output contract over a spread of titles.
func TestClassify_Properties(t *testing.T) {
	titles := []string{
		"x", "_", "__", "a_b", "a_bc_d", "Rel_abc", "Release/rc ", "Release/rc a",
		"Release/rc abc", "Rel_salescpq_1", "Rel_fox", "Rel_release/fast/_x", "🙂_🙂🙂🙂_1",
	}
	for _, branch := range []domain.Branch{prodBranch, uatBranch} {
		for _, title := range titles {
			c := Classify(domain.PullRequest{Title: title, Branch: branch})
			assert.True(t, c.Team == domain.UnknownTeam || utf8.RuneCountInString(c.Team) >= 3, "%s/%q -> %q", branch.Name, title, c.Team)
			assert.Contains(t, []domain.Cadence{domain.CadenceFast, domain.CadenceSlow}, c.Cadence)
		}
	}
}

func TestClassifyAll_KeepsOrder(t *testing.T) {
	prs := []domain.PullRequest{
		{Number: 2, Title: "Release/rc alpha 1", Branch: uatBranch},
		{Number: 1, Title: "Rel_beta_1", Branch: prodBranch},
	}
	got := ClassifyAll(prs)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Number)
	assert.Equal(t, "alpha", got[0].Team)
	assert.Equal(t, 1, got[1].Number)
	assert.Equal(t, "beta", got[1].Team)
}

func TestReclassify(t *testing.T) {
	stored := func(team string, cadence domain.Cadence, title string, branch domain.Branch) domain.ClassifiedPullRequest {
		return domain.ClassifiedPullRequest{
			PullRequest:    domain.PullRequest{Title: title, Branch: branch},
			Classification: domain.Classification{Team: team, Cadence: cadence},
		}
	}

	testCases := []struct {
		name   string
		rec    domain.ClassifiedPullRequest
		expect domain.Classification
	}{
		{
			name:   "legacy name is normalized",
			rec:    stored("mpnl", domain.CadenceFast, "Rel_mpnl_1", prodBranch),
			expect: domain.Classification{Team: "coreportal", Cadence: domain.CadenceFast},
		},
		{
			name:   "shared team split by title",
			rec:    stored("salescpq", domain.CadenceSlow, "Release/rc salescpq SFJR-2", uatBranch),
			expect: domain.Classification{Team: "jaguar", Cadence: domain.CadenceSlow},
		},
		{
			name:   "stored unknown stays excluded",
			rec:    stored(domain.UnknownTeam, domain.CadenceSlow, "Bump", prodBranch),
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceSlow, Reason: domain.ReasonUnknownTeam},
		},
		{
			name:   "unexpected cadence counts as slow",
			rec:    stored("alpha", "", "Rel_alpha_1", prodBranch),
			expect: domain.Classification{Team: "alpha", Cadence: domain.CadenceSlow},
		},
		{
			name:   "branch not configured",
			rec:    stored("alpha", domain.CadenceSlow, "Rel_alpha_1", domain.Branch{Name: "main"}),
			expect: domain.Classification{Team: domain.UnknownTeam, Cadence: domain.CadenceSlow, Reason: domain.ReasonUnknownBranch},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reclassify(tc.rec)
			assert.Equal(t, tc.expect, got.Classification)
			assert.Equal(t, tc.rec.PullRequest, got.PullRequest)
		})
	}
}
