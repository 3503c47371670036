package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/release-stats/internal/domain"
	"github.com/naka-gawa/release-stats/internal/gateway"
	"github.com/naka-gawa/release-stats/internal/logger"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchClosedPullRequests(ctx context.Context, branch domain.Branch) ([]domain.PullRequest, error) {
	args := m.Called(ctx, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
}

func at(day, hour int) *time.Time {
	return mergedAt(time.Date(2024, 9, day, hour, 0, 0, 0, time.UTC))
}

func TestPipeline_Run(t *testing.T) {
	window, err := ParseMergeWindow("2024-09-24", "2024-09-25")
	require.NoError(t, err)
	branches := []domain.Branch{prodBranch, uatBranch}

	prodPRs := []domain.PullRequest{
		{Number: 1, Title: "Rel_alpha_1_release/fast/x", MergedAt: at(24, 10), Branch: prodBranch},
		{Number: 2, Title: "Rel_mpnl_2", MergedAt: at(25, 10), Branch: prodBranch},
		{Number: 3, Title: "Rel_alpha_3", MergedAt: at(20, 10), Branch: prodBranch},
		{Number: 4, Title: "Rel_alpha_4", MergedAt: nil, Branch: prodBranch},
	}
	uatPRs := []domain.PullRequest{
		{Number: 5, Title: "Release/rc alpha build 5", MergedAt: at(24, 12), Branch: uatBranch},
		{Number: 6, Title: "Merge develop", MergedAt: at(24, 13), Branch: uatBranch},
	}

	testCases := []struct {
		name           string
		prodResult     []domain.PullRequest
		prodErr        error
		uatResult      []domain.PullRequest
		uatErr         error
		expectNumbers  []int
		expectTeams    []string
		expectFailures []bool
		expectDropped  int
	}{
		{
			name:           "happy path - both branches merged in branch order",
			prodResult:     prodPRs,
			uatResult:      uatPRs,
			expectNumbers:  []int{1, 2, 5, 6},
			expectTeams:    []string{"alpha", "coreportal"},
			expectFailures: []bool{false, false},
			expectDropped:  1,
		},
		{
			name:           "failed branch yields no records and the run continues",
			prodErr:        &gateway.TransportError{Branch: "master", StatusCode: 404},
			uatResult:      uatPRs,
			expectNumbers:  []int{5, 6},
			expectTeams:    []string{"alpha"},
			expectFailures: []bool{true, false},
			expectDropped:  1,
		},
		{
			name:           "empty case - nothing fetched",
			prodResult:     []domain.PullRequest{},
			uatResult:      []domain.PullRequest{},
			expectNumbers:  []int{},
			expectTeams:    []string{},
			expectFailures: []bool{false, false},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchClosedPullRequests", mock.Anything, prodBranch).Return(tc.prodResult, tc.prodErr)
			fetcher.On("FetchClosedPullRequests", mock.Anything, uatBranch).Return(tc.uatResult, tc.uatErr)

			pipeline := NewPipeline(fetcher, logger.Discard(), time.Minute)
			result, err := pipeline.Run(context.Background(), branches, window)
			require.NoError(t, err)

			numbers := []int{}
			for _, rec := range result.Records {
				numbers = append(numbers, rec.Number)
			}
			assert.Equal(t, tc.expectNumbers, numbers)

			teams := []string{}
			for _, team := range result.Teams.Teams() {
				teams = append(teams, team.Name)
			}
			assert.Equal(t, tc.expectTeams, teams)

			require.Len(t, result.Branches, 2)
			for i, failed := range tc.expectFailures {
				assert.Equal(t, failed, result.Branches[i].Err != nil, result.Branches[i].Branch.Name)
			}
			assert.Equal(t, tc.expectDropped, result.Report.Dropped)
			assert.Len(t, result.Report.Rows, len(tc.expectTeams))

			fetcher.AssertExpectations(t)
		})
	}
}

func TestPipeline_Run_Counts(t *testing.T) {
	window, err := ParseMergeWindow("2024-09-24", "2024-09-24")
	require.NoError(t, err)

	fetcher := new(mockFetcher)
	fetcher.On("FetchClosedPullRequests", mock.Anything, prodBranch).Return([]domain.PullRequest{
		{Number: 1, Title: "Rel_alpha_1", MergedAt: at(24, 1), Branch: prodBranch},
		{Number: 2, Title: "Rel_alpha_2", MergedAt: at(23, 1), Branch: prodBranch},
	}, nil)
	fetcher.On("FetchClosedPullRequests", mock.Anything, uatBranch).Return([]domain.PullRequest{}, nil)

	result, err := NewPipeline(fetcher, logger.Discard(), 0).Run(context.Background(), []domain.Branch{prodBranch, uatBranch}, window)
	require.NoError(t, err)

	assert.Equal(t, BranchSummary{Branch: prodBranch, Fetched: 2, Merged: 1}, result.Branches[0])
	assert.Equal(t, BranchSummary{Branch: uatBranch, Fetched: 0, Merged: 0}, result.Branches[1])
	assert.Equal(t, 1, result.Report.TotalProd)
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	window, err := ParseMergeWindow("2024-09-24", "2024-09-24")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := new(mockFetcher)
	fetcher.On("FetchClosedPullRequests", mock.Anything, mock.Anything).Return(nil, errors.New("request aborted"))

	result, err := NewPipeline(fetcher, logger.Discard(), 0).Run(ctx, []domain.Branch{prodBranch}, window)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}
