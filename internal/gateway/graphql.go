package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/release-stats/internal/domain"
)

// GraphQLGateway fetches pull requests through the GraphQL API.
type GraphQLGateway struct {
	graphqlClient *githubv4.Client
	owner         string
	repo          string
	logger        *slog.Logger
	progress      Progress
}

// closedPRQuery lists closed and merged pull requests based on one branch.
type closedPRQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Number    int
				Title     string
				CreatedAt githubv4.DateTime
				MergedAt  *githubv4.DateTime
			}
		} `graphql:"pullRequests(baseRefName: $base, states: [CLOSED, MERGED], first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGraphQLGateway creates a GraphQLGateway. opts.GraphQLURL selects an enterprise endpoint.
func NewGraphQLGateway(httpClient *http.Client, opts Options) *GraphQLGateway {
	httpClient = withStatusCheck(httpClient)
	client := githubv4.NewClient(httpClient)
	if opts.GraphQLURL != "" {
		client = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}
	return newGraphQLGateway(client, opts)
}

func newGraphQLGateway(client *githubv4.Client, opts Options) *GraphQLGateway {
	return &GraphQLGateway{
		graphqlClient: client,
		owner:         opts.Owner,
		repo:          opts.Repo,
		logger:        loggerOrDiscard(opts.Logger),
		progress:      opts.Progress,
	}
}

// FetchClosedPullRequests follows the pageInfo cursor until the last page.
func (g *GraphQLGateway) FetchClosedPullRequests(ctx context.Context, branch domain.Branch) ([]domain.PullRequest, error) {
	g.logger.Debug("fetching closed pull requests", "branch", branch.Name, "api", "graphql")

	variables := map[string]interface{}{
		"owner":  githubv4.String(g.owner),
		"name":   githubv4.String(g.repo),
		"base":   githubv4.String(branch.Name),
		"cursor": (*githubv4.String)(nil),
	}

	var result []domain.PullRequest
	for pages := 1; ; pages++ {
		var q closedPRQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, newTransportError(branch.Name, err)
		}

		for _, node := range q.Repository.PullRequests.Nodes {
			record := domain.PullRequest{
				Number:    node.Number,
				Title:     node.Title,
				CreatedAt: node.CreatedAt.Time,
				Branch:    branch,
			}
			if node.MergedAt != nil {
				mergedAt := node.MergedAt.Time
				record.MergedAt = &mergedAt
			}
			result = append(result, record)
		}
		g.progress.report(branch.Name, pages)

		if !q.Repository.PullRequests.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Repository.PullRequests.PageInfo.EndCursor)
		g.logger.Debug("fetching next page of pull requests", "branch", branch.Name, "page", pages+1)
	}

	g.logger.Debug("completed fetching pull requests", "branch", branch.Name, "count", len(result))
	return result, nil
}

// StatusError is a non-200 answer of the GraphQL endpoint, returned after the
// transport below it has given up retrying.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// statusTransport turns non-200 responses into a *StatusError so the status
// code survives the GraphQL client, which only reports it as text.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

func withStatusCheck(httpClient *http.Client) *http.Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := *httpClient
	c.Transport = &statusTransport{base: base}
	return &c
}
