// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"log/slog"

	"github.com/naka-gawa/release-stats/internal/domain"
)

// perPage is the largest page size GitHub accepts.
const perPage = 100

// Fetcher retrieves the closed pull requests targeting one branch.
// On failure it returns a nil slice and a *TransportError.
type Fetcher interface {
	FetchClosedPullRequests(ctx context.Context, branch domain.Branch) ([]domain.PullRequest, error)
}

// Progress is notified after every fetched page. A nil Progress is a no-op.
type Progress func(branch string, pages int)

func (p Progress) report(branch string, pages int) {
	if p != nil {
		p(branch, pages)
	}
}

// Options identifies the repository and carries the collaborators shared by both gateways.
type Options struct {
	Owner      string
	Repo       string
	APIURL     string
	GraphQLURL string
	Logger     *slog.Logger
	Progress   Progress
}
