package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/release-stats/internal/domain"
	"github.com/naka-gawa/release-stats/internal/gateway"
)

// BranchSummary reports what happened to one branch during a run.
// Err is set when the fetch failed; the branch then contributes no records.
type BranchSummary struct {
	Branch  domain.Branch
	Fetched int
	Merged  int
	Err     error
}

// Result is the outcome of a pipeline run.
type Result struct {
	Window   MergeWindow
	Branches []BranchSummary
	// Records holds every merged pull request of the window, classified,
	// in branch order then API order.
	Records []domain.ClassifiedPullRequest
	Teams   *domain.AggregateMap
	Report  *domain.ReportBundle
}

// Pipeline is the use case for building a release report.
// It orchestrates fetching, filtering, classification and aggregation.
type Pipeline struct {
	fetcher       gateway.Fetcher
	logger        *slog.Logger
	branchTimeout time.Duration
}

// NewPipeline creates a new Pipeline instance. A zero branchTimeout disables the per-branch deadline.
func NewPipeline(fetcher gateway.Fetcher, logger *slog.Logger, branchTimeout time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:       fetcher,
		logger:        logger,
		branchTimeout: branchTimeout,
	}
}

// Run fetches every branch concurrently and builds the report.
// A failing branch is logged and recorded in its BranchSummary but does not
// stop the run; only cancellation of ctx does.
func (p *Pipeline) Run(ctx context.Context, branches []domain.Branch, window MergeWindow) (*Result, error) {
	p.logger.Debug("starting release report", "from", window.Start, "to", window.End)

	fetched := make([][]domain.PullRequest, len(branches))
	fetchErrs := make([]error, len(branches))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, branch := range branches {
		eg.Go(func() error {
			branchCtx := egCtx
			if p.branchTimeout > 0 {
				var cancel context.CancelFunc
				branchCtx, cancel = context.WithTimeout(egCtx, p.branchTimeout)
				defer cancel()
			}

			prs, err := p.fetcher.FetchClosedPullRequests(branchCtx, branch)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.logger.Warn("fetch failed, continuing without branch", "branch", branch.Name, "error", err)
				fetchErrs[i] = err
				return nil
			}
			fetched[i] = prs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Window: window, Branches: make([]BranchSummary, 0, len(branches))}
	var merged []domain.PullRequest
	for i, branch := range branches {
		inWindow := FilterMerged(fetched[i], window)
		merged = append(merged, inWindow...)
		result.Branches = append(result.Branches, BranchSummary{
			Branch:  branch,
			Fetched: len(fetched[i]),
			Merged:  len(inWindow),
			Err:     fetchErrs[i],
		})
		p.logger.Info("merged pull requests in window", "branch", branch.Name, "fetched", len(fetched[i]), "merged", len(inWindow))
	}

	result.Records = ClassifyAll(merged)
	result.Teams = Aggregate(result.Records)
	if result.Teams.Dropped > 0 {
		p.logger.Warn("pull requests without a recognised team were excluded",
			"dropped", result.Teams.Dropped, "reasons", result.Teams.DroppedByReason)
	}
	result.Report = BuildReport(result.Teams)

	p.logger.Debug("release report complete", "teams", result.Teams.Len())
	return result, nil
}
