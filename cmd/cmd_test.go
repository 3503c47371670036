package cmd

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/release-stats/internal/gateway"
)

func TestReportNameFor(t *testing.T) {
	testCases := []struct {
		in, ext, want string
	}{
		{in: "reports/merged_prs_2024-09-01_to_2024-09-30.csv", ext: ".xlsx", want: "pr_report_2024-09-01_to_2024-09-30.xlsx"},
		{in: "reports/merged_prs_2024-09-01_to_2024-09-30.csv", ext: ".pdf", want: "pr_report_2024-09-01_to_2024-09-30.pdf"},
		{in: "edited.csv", ext: ".xlsx", want: "pr_report_edited.xlsx"},
		{in: "/tmp/merged_prs_q3", ext: ".pdf", want: "pr_report_q3.pdf"},
	}
	for _, tc := range testCases {
		t.Run(tc.in+tc.ext, func(t *testing.T) {
			assert.Equal(t, tc.want, reportNameFor(tc.in, tc.ext))
		})
	}
}

func TestFetcherFor(t *testing.T) {
	opts := gateway.Options{Owner: "org", Repo: "repo"}

	f, err := fetcherFor("rest", http.DefaultClient, opts)
	require.NoError(t, err)
	assert.IsType(t, &gateway.GitHubGateway{}, f)

	f, err = fetcherFor("graphql", http.DefaultClient, opts)
	require.NoError(t, err)
	assert.IsType(t, &gateway.GraphQLGateway{}, f)

	_, err = fetcherFor("soap", http.DefaultClient, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown api "soap"`)
}
