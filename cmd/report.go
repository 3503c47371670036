package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/release-stats/internal/config"
	"github.com/naka-gawa/release-stats/internal/gateway"
	"github.com/naka-gawa/release-stats/internal/render"
	"github.com/naka-gawa/release-stats/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetches merged pull requests and writes the release report",
	Long: `Fetches the closed pull requests of the production and pre-production branches,
keeps those merged within --from..--to (both inclusive), attributes them to teams and
writes merged_prs_<from>_to_<to>.csv and pr_report_<from>_to_<to>.xlsx/.pdf to the output directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(cmd)
		if err != nil {
			exitOnError(cmd, "failed to load configuration: %v", err)
		}
		if err := cfg.ValidateForFetch(); err != nil {
			exitOnError(cmd, "invalid configuration: %v", err)
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			exitOnError(cmd, "%v", err)
		}

		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		window, err := usecase.ParseMergeWindow(fromStr, toStr)
		if err != nil {
			exitOnError(cmd, "%v", err)
		}

		// Inject dependencies and run the main business logic.
		api, _ := cmd.Flags().GetString("api")
		fetcher, err := newFetcher(cfg, api, gateway.Options{
			Owner:      cfg.Owner,
			Repo:       cfg.Repo,
			APIURL:     cfg.APIURL,
			GraphQLURL: cfg.GraphQLURL,
			Logger:     logger,
			Progress: func(branch string, pages int) {
				logger.Info("fetched page of pull requests", "branch", branch, "pages", pages)
			},
		})
		if err != nil {
			exitOnError(cmd, "failed to create GitHub gateway: %v", err)
		}

		pipeline := usecase.NewPipeline(fetcher, logger, cfg.BranchTimeout)
		result, err := pipeline.Run(ctx, cfg.Branches(), window)
		if err != nil {
			exitOnError(cmd, "failed to build report: %v", err)
		}

		out := cmd.ErrOrStderr()
		for _, b := range result.Branches {
			if b.Err != nil {
				fmt.Fprintf(out, "Failed to fetch PRs from %s: %v\n", b.Branch.Name, b.Err)
				continue
			}
			fmt.Fprintf(out, "Total merged PRs between %s and %s from %s: %d\n", fromStr, toStr, b.Branch.Name, b.Merged)
		}
		if result.Report.Dropped > 0 {
			fmt.Fprintf(out, "PRs without a recognised team: %d\n", result.Report.Dropped)
		}

		csvPath := filepath.Join(cfg.OutputDir, render.RecordsFileName(fromStr, toStr))
		if err := render.WriteRecordsFile(csvPath, result.Records); err != nil {
			exitOnError(cmd, "%v", err)
		}
		fmt.Fprintf(out, "Filtered PR details saved to %s\n", csvPath)

		xlsxPath := filepath.Join(cfg.OutputDir, render.WorkbookFileName(fromStr, toStr))
		if err := render.WriteWorkbook(xlsxPath, result.Report); err != nil {
			exitOnError(cmd, "%v", err)
		}
		fmt.Fprintf(out, "Excel file saved to %s\n", xlsxPath)

		pdfPath := filepath.Join(cfg.OutputDir, render.PDFFileName(fromStr, toStr))
		if err := render.WritePDF(pdfPath, result.Report); err != nil {
			exitOnError(cmd, "%v", err)
		}
		fmt.Fprintf(out, "PDF report saved to %s\n", pdfPath)

		if printJSON, _ := cmd.Flags().GetBool("json"); printJSON {
			// Marshal the report into a pretty-printed JSON string.
			jsonData, err := json.MarshalIndent(result.Report, "", "  ")
			if err != nil {
				exitOnError(cmd, "failed to marshal report to JSON: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		}
	},
}

func newFetcher(cfg *config.Config, api string, opts gateway.Options) (gateway.Fetcher, error) {
	httpClient, err := gateway.NewHTTPClient(gateway.ClientOptions{
		Token:          cfg.Token,
		RequestTimeout: cfg.RequestTimeout,
		RetryMax:       cfg.RetryMax,
		RetryWaitMin:   cfg.RetryWaitMin,
		RetryWaitMax:   cfg.RetryWaitMax,
		RateLimitSleep: cfg.RateLimitSleep,
		Logger:         opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return fetcherFor(api, httpClient, opts)
}

func fetcherFor(api string, httpClient *http.Client, opts gateway.Options) (gateway.Fetcher, error) {
	switch api {
	case "rest":
		return gateway.NewGitHubGateway(httpClient, opts)
	case "graphql":
		return gateway.NewGraphQLGateway(httpClient, opts), nil
	default:
		return nil, fmt.Errorf("unknown api %q, use rest or graphql", api)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("owner", "o", "", "Repository owner (default from GITHUB_OWNER)")
	reportCmd.Flags().StringP("repo", "r", "", "Repository name (default from GITHUB_REPO)")
	reportCmd.Flags().String("from", "", "Start date, inclusive (YYYY-MM-DD) (required)")
	reportCmd.Flags().String("to", "", "End date, inclusive (YYYY-MM-DD) (required)")
	reportCmd.Flags().String("api", "rest", "GitHub API to fetch with: rest or graphql")
	reportCmd.Flags().Bool("json", false, "Also print the report as JSON to standard output")
	reportCmd.MarkFlagRequired("from")
	reportCmd.MarkFlagRequired("to")
}
