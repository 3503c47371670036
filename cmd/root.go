// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/release-stats/internal/config"
	"github.com/naka-gawa/release-stats/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "release-stats",
	Short: "A CLI tool to report team releases from merged GitHub pull requests.",
	Long: `release-stats fetches the pull requests merged into the production and
pre-production branches of a repository, attributes each one to a team and a
release cadence from its title, and writes a records CSV and a report workbook.
You must specify the date range to report on.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("prod-branch", "", "Production branch (default from RELEASE_PROD_BRANCH or master)")
	rootCmd.PersistentFlags().String("uat-branch", "", "Pre-production branch (default from RELEASE_UAT_BRANCH or develop_uat)")
	rootCmd.PersistentFlags().StringP("out", "d", "", "Output directory (default from RELEASE_OUTPUT_DIR or reports)")
}

// loadConfig reads the environment and lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"prod-branch", &cfg.ProdBranch},
		{"uat-branch", &cfg.UATBranch},
		{"out", &cfg.OutputDir},
		{"owner", &cfg.Owner},
		{"repo", &cfg.Repo},
	}
	for _, o := range overrides {
		f := cmd.Flags().Lookup(o.flag)
		if f != nil && f.Changed {
			*o.dst = f.Value.String()
		}
	}
	return cfg, nil
}

// newLogger writes to standard error so JSON on standard output stays parseable.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	lc := &logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		lc.Level = "debug"
	}
	l, err := logger.New(lc, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

func exitOnError(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: "+format+"\n", args...)
	os.Exit(1)
}
