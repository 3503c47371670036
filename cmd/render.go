package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/release-stats/internal/domain"
	"github.com/naka-gawa/release-stats/internal/render"
	"github.com/naka-gawa/release-stats/internal/usecase"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Builds the report workbook and PDF from a records CSV",
	Long: `Reads a records CSV written by the report command (or edited by hand), re-applies
team normalization and writes pr_report_<name>.xlsx and .pdf to the output directory. No GitHub
access is needed.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			exitOnError(cmd, "failed to load configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			exitOnError(cmd, "invalid configuration: %v", err)
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			exitOnError(cmd, "%v", err)
		}

		csvPath, _ := cmd.Flags().GetString("csv")
		records, err := render.ReadRecordsFile(csvPath, cfg.Branches())
		if err != nil {
			exitOnError(cmd, "%v", err)
		}

		reclassified := make([]domain.ClassifiedPullRequest, 0, len(records))
		for _, rec := range records {
			reclassified = append(reclassified, usecase.Reclassify(rec))
		}
		teams := usecase.Aggregate(reclassified)
		if teams.Dropped > 0 {
			logger.Warn("records without a recognised team were excluded", "dropped", teams.Dropped)
		}
		report := usecase.BuildReport(teams)

		xlsxPath := filepath.Join(cfg.OutputDir, reportNameFor(csvPath, ".xlsx"))
		if err := render.WriteWorkbook(xlsxPath, report); err != nil {
			exitOnError(cmd, "%v", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Excel file saved to %s\n", xlsxPath)

		pdfPath := filepath.Join(cfg.OutputDir, reportNameFor(csvPath, ".pdf"))
		if err := render.WritePDF(pdfPath, report); err != nil {
			exitOnError(cmd, "%v", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "PDF report saved to %s\n", pdfPath)
	},
}

// reportNameFor maps merged_prs_<range>.csv to pr_report_<range><ext>.
func reportNameFor(csvPath, ext string) string {
	name := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	return "pr_report_" + strings.TrimPrefix(name, "merged_prs_") + ext
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("csv", "", "Records CSV to render (required)")
	renderCmd.MarkFlagRequired("csv")
}
