package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/naka-gawa/release-stats/internal/domain"
)

const (
	ReleasesSheet  = "Releases"
	SummarySheet   = "Summary"
	ProdVsUATSheet = "Prod vs UAT"

	maxSheetNameLength = 31
	defaultSheet       = "Sheet1"
)

var (
	releasesHeader = []interface{}{"Team Name", "Total Releases", "Fast Releases", "Slow Releases", "Branches", "Releases"}
	summaryHeader  = []interface{}{"Team Name", "Total", "Fast", "Slow", "Branches"}
	prodUATHeader  = []interface{}{"Team Name", "Prod Releases", "UAT Releases"}
	leadTimeHeader = []interface{}{"Team Name", "Merged PRs", "Mean Hours", "Median Hours", "P90 Hours"}
)

// WorkbookFileName is the report workbook name for a date range.
func WorkbookFileName(start, end string) string {
	return fmt.Sprintf("pr_report_%s_to_%s.xlsx", start, end)
}

// WriteWorkbook renders report into an xlsx file at path.
//
// Sheets: Releases (one row per team, titles wrapped), Summary (table, team
// totals bar chart and the fast vs slow pie), one sheet per team, and
// Prod vs UAT (grouped columns and the total of prod releases).
func WriteWorkbook(path string, report *domain.ReportBundle) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := &workbook{file: f, used: map[string]bool{}}
	if err := w.file.SetSheetName(defaultSheet, ReleasesSheet); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{ReleasesSheet, SummarySheet, ProdVsUATSheet} {
		w.used[strings.ToLower(name)] = true
	}

	steps := []struct {
		name string
		fn   func(*domain.ReportBundle) error
	}{
		{"releases", w.releases},
		{"summary", w.summary},
		{"team pages", w.teamPages},
		{"prod vs uat", w.prodVsUAT},
	}
	for _, step := range steps {
		if err := step.fn(report); err != nil {
			return fmt.Errorf("failed to render %s: %w", step.name, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

type workbook struct {
	file *excelize.File
	used map[string]bool
}

func (w *workbook) releases(report *domain.ReportBundle) error {
	sheet := ReleasesSheet
	rows := [][]interface{}{releasesHeader}
	for _, r := range report.Rows {
		rows = append(rows, []interface{}{r.Team, r.Total, r.Fast, r.Slow, r.Branches, r.Releases})
	}
	if err := w.writeRows(sheet, 1, rows); err != nil {
		return err
	}
	if err := w.boldRow(sheet, 1, len(releasesHeader)); err != nil {
		return err
	}
	if err := w.file.SetColWidth(sheet, "A", "E", 16); err != nil {
		return err
	}
	if err := w.file.SetColWidth(sheet, "F", "F", 80); err != nil {
		return err
	}
	if len(report.Rows) == 0 {
		return nil
	}

	wrap, err := w.file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, "F2", cell(6, len(report.Rows)+1), wrap)
}

func (w *workbook) summary(report *domain.ReportBundle) error {
	sheet := SummarySheet
	if _, err := w.file.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{summaryHeader}
	for _, r := range report.Summary {
		rows = append(rows, []interface{}{r.Team, r.Total, r.Fast, r.Slow, r.Branches})
	}
	if err := w.writeRows(sheet, 1, rows); err != nil {
		return err
	}
	if err := w.boldRow(sheet, 1, len(summaryHeader)); err != nil {
		return err
	}

	// source cells of the pie, below the table
	cadenceRow := len(rows) + 2
	if err := w.writeRows(sheet, cadenceRow, [][]interface{}{
		{"Release Type", "Releases"},
		{"Fast Releases", report.Cadence.Fast},
		{"Slow Releases", report.Cadence.Slow},
	}); err != nil {
		return err
	}

	if n := len(report.TeamTotals); n > 0 {
		if err := w.file.AddChart(sheet, "H2", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       ref(sheet, 2, 1),
				Categories: rangeRef(sheet, 1, 2, 1, n+1),
				Values:     rangeRef(sheet, 2, 2, 2, n+1),
			}},
			Title:  []excelize.RichTextRun{{Text: "Number of Releases by Team"}},
			Legend: excelize.ChartLegend{Position: "none"},
		}); err != nil {
			return err
		}
	}

	if report.Cadence.NoData {
		return w.file.SetCellValue(sheet, cell(8, 20), domain.NoDataLabel)
	}
	return w.file.AddChart(sheet, "H20", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       ref(sheet, 2, cadenceRow),
			Categories: rangeRef(sheet, 1, cadenceRow+1, 1, cadenceRow+2),
			Values:     rangeRef(sheet, 2, cadenceRow+1, 2, cadenceRow+2),
		}},
		Title: []excelize.RichTextRun{{Text: "Fast vs Slow Releases"}},
	})
}

func (w *workbook) teamPages(report *domain.ReportBundle) error {
	for _, page := range report.TeamPages {
		sheet, err := w.newTeamSheet(page.Team)
		if err != nil {
			return err
		}
		rows := [][]interface{}{
			{"Team", page.Team},
			{"Total Releases", page.Total},
			{"Fast Releases", page.Fast},
			{"Slow Releases", page.Slow},
			{"Branches", page.Branches},
			{},
			{"Releases"},
		}
		for _, r := range page.Releases {
			rows = append(rows, []interface{}{r.Index, r.Title})
		}
		if err := w.writeRows(sheet, 1, rows); err != nil {
			return err
		}
		if err := w.file.SetColWidth(sheet, "A", "A", 16); err != nil {
			return err
		}
		if err := w.file.SetColWidth(sheet, "B", "B", 80); err != nil {
			return err
		}
		if err := w.boldRow(sheet, 1, 2); err != nil {
			return err
		}
		if err := w.boldRow(sheet, 7, 1); err != nil {
			return err
		}
	}
	return nil
}

func (w *workbook) prodVsUAT(report *domain.ReportBundle) error {
	sheet := ProdVsUATSheet
	if _, err := w.file.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{prodUATHeader}
	for _, p := range report.ProdVsUAT {
		rows = append(rows, []interface{}{p.Team, p.Prod, p.UAT})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Total Prod Releases", report.TotalProd})
	if len(report.LeadTimes) > 0 {
		rows = append(rows, []interface{}{}, leadTimeHeader)
		for _, l := range report.LeadTimes {
			rows = append(rows, []interface{}{l.Team, l.Count, l.MeanHours, l.MedianHours, l.P90Hours})
		}
	}
	if err := w.writeRows(sheet, 1, rows); err != nil {
		return err
	}
	if err := w.boldRow(sheet, 1, len(prodUATHeader)); err != nil {
		return err
	}

	n := len(report.ProdVsUAT)
	if n == 0 {
		return nil
	}
	series := make([]excelize.ChartSeries, 0, 2)
	for col := 2; col <= 3; col++ {
		series = append(series, excelize.ChartSeries{
			Name:       ref(sheet, col, 1),
			Categories: rangeRef(sheet, 1, 2, 1, n+1),
			Values:     rangeRef(sheet, col, 2, col, n+1),
		})
	}
	return w.file.AddChart(sheet, "G2", &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title: []excelize.RichTextRun{{
			Text: fmt.Sprintf("Number of Prod vs UAT Releases by Team (Total Prod Releases: %d)", report.TotalProd),
		}},
		Legend: excelize.ChartLegend{Position: "top"},
	})
}

func (w *workbook) newTeamSheet(name string) (string, error) {
	sheet := w.uniqueSheetName(name)
	if _, err := w.file.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("failed to add sheet %q: %w", sheet, err)
	}
	return sheet, nil
}

// uniqueSheetName turns name into a valid sheet name that is not used yet.
// Sheet names are compared case-insensitively.
func (w *workbook) uniqueSheetName(name string) string {
	base := SanitizeSheetName(name)
	candidate := base
	for i := 2; w.used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(base, maxSheetNameLength-len(suffix)) + suffix
	}
	w.used[strings.ToLower(candidate)] = true
	return candidate
}

func (w *workbook) writeRows(sheet string, firstRow int, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := w.file.SetSheetRow(sheet, cell(1, firstRow+i), &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *workbook) boldRow(sheet string, row, cols int) error {
	bold, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, cell(1, row), cell(cols, row), bold)
}

// SanitizeSheetName replaces characters Excel rejects in sheet names and
// trims the result to 31 characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Team"
	}
	return truncateRunes(name, maxSheetNameLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func ref(sheet string, col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row, true)
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), name)
}

func rangeRef(sheet string, col1, row1, col2, row2 int) string {
	from, _ := excelize.CoordinatesToCellName(col1, row1, true)
	to, _ := excelize.CoordinatesToCellName(col2, row2, true)
	return fmt.Sprintf("'%s'!%s:%s", strings.ReplaceAll(sheet, "'", "''"), from, to)
}
