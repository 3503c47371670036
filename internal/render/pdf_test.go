package render

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/release-stats/internal/domain"
)

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", PDFFileName("2024-09-01", "2024-09-30"))
	require.NoError(t, WritePDF(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, "pr_report_2024-09-01_to_2024-09-30.pdf", filepath.Base(path))
}

func TestNewReportPDF_Pages(t *testing.T) {
	testCases := []struct {
		name        string
		report      *domain.ReportBundle
		expectPages int
	}{
		{
			name:        "overview, summary, one page per team and prod vs uat",
			report:      sampleReport(),
			expectPages: 5,
		},
		{
			name:        "empty report keeps the fixed pages",
			report:      &domain.ReportBundle{Cadence: domain.CadenceSplit{NoData: true}},
			expectPages: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := newReportPDF(tc.report)
			require.NoError(t, doc.Error())
			assert.Equal(t, tc.expectPages, doc.PageCount())
		})
	}
}

func TestSectorPoints(t *testing.T) {
	points := sectorPoints(100, 50, 10, -90, 0)

	assert.Equal(t, 100.0, points[0].X)
	assert.Equal(t, 50.0, points[0].Y)
	first, last := points[1], points[len(points)-1]
	assert.InDelta(t, 100, first.X, 1e-9)
	assert.InDelta(t, 40, first.Y, 1e-9)
	assert.InDelta(t, 110, last.X, 1e-9)
	assert.InDelta(t, 50, last.Y, 1e-9)
	assert.Len(t, points, 2+int(math.Ceil(90/pieStepDeg)))
}

func TestDocumentFit(t *testing.T) {
	doc := newReportPDF(&domain.ReportBundle{Cadence: domain.CadenceSplit{NoData: true}})
	d := &document{pdf: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
	d.pdf.SetFont(pdfFont, "", 10)

	assert.Equal(t, "alpha", d.fit("alpha", 100))
	short := d.fit("a-very-long-team-name-that-cannot-fit", 20)
	assert.True(t, len(short) < len("a-very-long-team-name-that-cannot-fit"))
	assert.Equal(t, "..", short[len(short)-2:])
}
