package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/naka-gawa/release-stats/internal/domain"
)

const (
	pdfMargin     = 15.0
	pdfPageWidth  = 297.0
	pdfPageHeight = 210.0
	pdfFont       = "Helvetica"
	pieStepDeg    = 2.0
)

var (
	seriesColors  = [][3]int{{68, 114, 196}, {237, 125, 49}}
	summaryWidths = []float64{60, 30, 30, 30, pdfPageWidth - 2*pdfMargin - 150}
)

// PDFFileName is the report document name for a date range.
func PDFFileName(start, end string) string {
	return fmt.Sprintf("pr_report_%s_to_%s.pdf", start, end)
}

// WritePDF renders report into a landscape A4 document at path.
//
// Pages: team totals bar chart with the fast vs slow pie, the summary table,
// one page per team with its numbered releases, and the prod vs uat chart
// followed by the total of prod releases.
func WritePDF(path string, report *domain.ReportBundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := newReportPDF(report).OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to save pdf: %w", err)
	}
	return nil
}

func newReportPDF(report *domain.ReportBundle) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	d.overview(report)
	d.summaryTable(report)
	for _, page := range report.TeamPages {
		d.teamPage(page)
	}
	d.prodVsUAT(report)
	return pdf
}

type document struct {
	pdf *fpdf.Fpdf
	// tr maps UTF-8 to the cp1252 encoding of the core fonts.
	tr func(string) string
}

func (d *document) overview(report *domain.ReportBundle) {
	d.pdf.AddPage()
	d.heading("Total Releases per Team")

	labels := make([]string, 0, len(report.TeamTotals))
	values := make([]int, 0, len(report.TeamTotals))
	for _, p := range report.TeamTotals {
		labels = append(labels, p.Label)
		values = append(values, p.Value)
	}
	d.barChart(pdfMargin, 35, 165, 140, labels, [][]int{values}, nil)

	cx, cy, r := 240.0, 90.0, 38.0
	d.pdf.SetFont(pdfFont, "B", 12)
	d.centeredText(cx, 35, "Fast vs Slow Releases")
	if report.Cadence.NoData {
		d.pdf.SetFont(pdfFont, "", 12)
		d.centeredText(cx, cy, domain.NoDataLabel)
		return
	}
	d.pieChart(cx, cy, r, []domain.SeriesPoint{
		{Label: "Fast Releases", Value: report.Cadence.Fast},
		{Label: "Slow Releases", Value: report.Cadence.Slow},
	})
}

func (d *document) summaryTable(report *domain.ReportBundle) {
	d.pdf.AddPage()
	d.heading("Release Summary")

	d.pdf.SetFont(pdfFont, "B", 10)
	d.pdf.SetFillColor(217, 225, 242)
	for i, h := range summaryHeader {
		d.pdf.CellFormat(summaryWidths[i], 8, d.tr(h.(string)), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(pdfFont, "", 10)
	if len(report.Summary) == 0 {
		d.pdf.CellFormat(pdfPageWidth-2*pdfMargin, 8, domain.NoDataLabel, "1", 1, "C", false, 0, "")
		return
	}
	for _, row := range report.Summary {
		cells := []string{
			row.Team,
			fmt.Sprint(row.Total),
			fmt.Sprint(row.Fast),
			fmt.Sprint(row.Slow),
			row.Branches,
		}
		for i, c := range cells {
			align := "C"
			if i == 0 || i == len(cells)-1 {
				align = "L"
			}
			d.pdf.CellFormat(summaryWidths[i], 7, d.tr(d.fit(c, summaryWidths[i]-2)), "1", 0, align, false, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

func (d *document) teamPage(page domain.TeamPage) {
	d.pdf.AddPage()
	d.heading(page.Team)

	d.pdf.SetFont(pdfFont, "", 11)
	for _, line := range []string{
		fmt.Sprintf("Total Releases: %d", page.Total),
		fmt.Sprintf("Fast Releases: %d", page.Fast),
		fmt.Sprintf("Slow Releases: %d", page.Slow),
		"Branches: " + page.Branches,
	} {
		d.pdf.CellFormat(0, 7, d.tr(line), "", 1, "L", false, 0, "")
	}

	d.pdf.Ln(4)
	d.pdf.SetFont(pdfFont, "B", 12)
	d.pdf.CellFormat(0, 8, "Releases", "", 1, "L", false, 0, "")
	d.pdf.SetFont(pdfFont, "", 10)
	for _, r := range page.Releases {
		d.pdf.MultiCell(0, 6, d.tr(fmt.Sprintf("%d. %s", r.Index, r.Title)), "", "L", false)
	}
}

func (d *document) prodVsUAT(report *domain.ReportBundle) {
	d.pdf.AddPage()
	d.heading("Prod vs UAT Releases per Team")

	labels := make([]string, 0, len(report.ProdVsUAT))
	prod := make([]int, 0, len(report.ProdVsUAT))
	uat := make([]int, 0, len(report.ProdVsUAT))
	for _, p := range report.ProdVsUAT {
		labels = append(labels, p.Team)
		prod = append(prod, p.Prod)
		uat = append(uat, p.UAT)
	}
	d.barChart(pdfMargin, 35, pdfPageWidth-2*pdfMargin, 125, labels, [][]int{prod, uat}, []string{"Prod Releases", "UAT Releases"})

	d.pdf.SetFont(pdfFont, "B", 12)
	d.pdf.Text(pdfMargin, pdfPageHeight-pdfMargin-5, fmt.Sprintf("Total Prod Releases: %d", report.TotalProd))
}

func (d *document) heading(title string) {
	d.pdf.SetFont(pdfFont, "B", 16)
	d.pdf.CellFormat(0, 10, d.tr(title), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

// barChart draws one bar per series for every label, scaled to the largest value.
func (d *document) barChart(x, y, w, h float64, labels []string, series [][]int, legend []string) {
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.Line(x, y, x, y+h)
	d.pdf.Line(x, y+h, x+w, y+h)
	if len(labels) == 0 {
		d.pdf.SetFont(pdfFont, "", 12)
		d.centeredText(x+w/2, y+h/2, domain.NoDataLabel)
		return
	}

	top := 1
	for _, values := range series {
		for _, v := range values {
			top = max(top, v)
		}
	}

	groupW := w / float64(len(labels))
	barW := groupW * 0.8 / float64(len(series))
	d.pdf.SetFont(pdfFont, "", 7)
	for i, label := range labels {
		gx := x + float64(i)*groupW + groupW*0.1
		for s, values := range series {
			bh := h * float64(values[i]) / float64(top)
			bx := gx + float64(s)*barW
			c := seriesColors[s%len(seriesColors)]
			d.pdf.SetFillColor(c[0], c[1], c[2])
			d.pdf.Rect(bx, y+h-bh, barW, bh, "F")
			d.centeredText(bx+barW/2, y+h-bh-1, fmt.Sprint(values[i]))
		}
		d.centeredText(x+float64(i)*groupW+groupW/2, y+h+4, d.fit(label, groupW-1))
	}

	for s, name := range legend {
		lx := x + float64(s)*50
		c := seriesColors[s%len(seriesColors)]
		d.pdf.SetFillColor(c[0], c[1], c[2])
		d.pdf.Rect(lx, y+h+8, 4, 4, "F")
		d.pdf.SetFont(pdfFont, "", 9)
		d.pdf.Text(lx+6, y+h+11.5, name)
	}
}

// pieChart draws the non-empty slices clockwise from twelve o'clock with a legend below.
func (d *document) pieChart(cx, cy, r float64, slices []domain.SeriesPoint) {
	total := 0
	for _, s := range slices {
		total += s.Value
	}
	if total == 0 {
		return
	}

	start := -90.0
	for i, s := range slices {
		c := seriesColors[i%len(seriesColors)]
		if s.Value > 0 {
			sweep := 360 * float64(s.Value) / float64(total)
			d.pdf.SetFillColor(c[0], c[1], c[2])
			d.pdf.Polygon(sectorPoints(cx, cy, r, start, start+sweep), "F")
			start += sweep
		}

		ly := cy + r + 10 + float64(i)*7
		d.pdf.SetFillColor(c[0], c[1], c[2])
		d.pdf.Rect(cx-r, ly-3.5, 4, 4, "F")
		d.pdf.SetFont(pdfFont, "", 10)
		pct := 100 * float64(s.Value) / float64(total)
		d.pdf.Text(cx-r+6, ly, fmt.Sprintf("%s: %d (%.1f%%)", s.Label, s.Value, pct))
	}
}

func sectorPoints(cx, cy, r, fromDeg, toDeg float64) []fpdf.PointType {
	points := []fpdf.PointType{{X: cx, Y: cy}}
	for deg := fromDeg; ; deg += pieStepDeg {
		deg = math.Min(deg, toDeg)
		rad := deg * math.Pi / 180
		points = append(points, fpdf.PointType{X: cx + r*math.Cos(rad), Y: cy + r*math.Sin(rad)})
		if deg >= toDeg {
			return points
		}
	}
}

func (d *document) centeredText(cx, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(cx-d.pdf.GetStringWidth(s)/2, y, s)
}

// fit shortens s with a trailing ".." until it fits width in the current font.
func (d *document) fit(s string, width float64) string {
	if d.pdf.GetStringWidth(d.tr(s)) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && d.pdf.GetStringWidth(d.tr(string(runes))+"..") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}
