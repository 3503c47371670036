package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v62/github"
	"github.com/tomnomnom/linkheader"

	"github.com/naka-gawa/release-stats/internal/domain"
)

// GitHubGateway fetches pull requests through the REST API.
type GitHubGateway struct {
	restClient *github.Client
	owner      string
	repo       string
	logger     *slog.Logger
	progress   Progress
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(httpClient *http.Client, opts Options) (*GitHubGateway, error) {
	restClient := github.NewClient(httpClient)
	if opts.APIURL != "" {
		var err error
		restClient, err = restClient.WithEnterpriseURLs(opts.APIURL, opts.APIURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure API URL: %w", err)
		}
	}
	return newGitHubGateway(restClient, opts), nil
}

func newGitHubGateway(restClient *github.Client, opts Options) *GitHubGateway {
	return &GitHubGateway{
		restClient: restClient,
		owner:      opts.Owner,
		repo:       opts.Repo,
		logger:     loggerOrDiscard(opts.Logger),
		progress:   opts.Progress,
	}
}

// FetchClosedPullRequests walks every page of closed pull requests based on branch.
// The first page is requested with query parameters; later pages follow the
// fully-qualified rel="next" URL of the Link header, so no parameters are re-sent.
// Pages are fetched one after another and any failure discards what was collected.
func (g *GitHubGateway) FetchClosedPullRequests(ctx context.Context, branch domain.Branch) ([]domain.PullRequest, error) {
	g.logger.Debug("fetching closed pull requests", "branch", branch.Name, "api", "rest")

	opts := &github.PullRequestListOptions{
		State:       "closed",
		Base:        branch.Name,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	prs, resp, err := g.restClient.PullRequests.List(ctx, g.owner, g.repo, opts)

	var result []domain.PullRequest
	for pages := 1; ; pages++ {
		if err != nil {
			return nil, newTransportError(branch.Name, err)
		}
		result = appendPullRequests(result, prs, branch)
		g.progress.report(branch.Name, pages)

		next := nextPageURL(resp.Header.Get("Link"))
		if next == "" {
			break
		}
		g.logger.Debug("fetching next page of pull requests", "branch", branch.Name, "page", pages+1)
		prs, resp, err = g.fetchPage(ctx, next)
	}

	g.logger.Debug("completed fetching pull requests", "branch", branch.Name, "count", len(result))
	return result, nil
}

func (g *GitHubGateway) fetchPage(ctx context.Context, pageURL string) ([]*github.PullRequest, *github.Response, error) {
	req, err := g.restClient.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}
	var prs []*github.PullRequest
	resp, err := g.restClient.Do(ctx, req, &prs)
	if err != nil {
		return nil, resp, err
	}
	return prs, resp, nil
}

func appendPullRequests(dst []domain.PullRequest, prs []*github.PullRequest, branch domain.Branch) []domain.PullRequest {
	for _, pr := range prs {
		record := domain.PullRequest{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			CreatedAt: pr.GetCreatedAt().Time,
			Branch:    branch,
		}
		if pr.MergedAt != nil {
			mergedAt := pr.MergedAt.Time
			record.MergedAt = &mergedAt
		}
		dst = append(dst, record)
	}
	return dst
}

// nextPageURL returns the target of the rel="next" relation, or "" on the last page.
func nextPageURL(header string) string {
	if header == "" {
		return ""
	}
	for _, link := range linkheader.Parse(header).FilterByRel("next") {
		return link.URL
	}
	return ""
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
