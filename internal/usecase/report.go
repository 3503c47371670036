package usecase

import (
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/release-stats/internal/domain"
)

const branchSeparator = ", "

// BuildReport derives every table and series a renderer needs from the aggregates.
// Team order follows the AggregateMap. An empty map yields empty, non-nil tables
// and a cadence split flagged NoData.
func BuildReport(teams *domain.AggregateMap) *domain.ReportBundle {
	n := teams.Len()
	report := &domain.ReportBundle{
		Rows:       make([]domain.SpreadsheetRow, 0, n),
		TeamTotals: make([]domain.SeriesPoint, 0, n),
		Summary:    make([]domain.SummaryRow, 0, n),
		TeamPages:  make([]domain.TeamPage, 0, n),
		ProdVsUAT:  make([]domain.ProdUATPoint, 0, n),
		LeadTimes:  make([]domain.LeadTimeSummary, 0, n),
		Dropped:    teams.Dropped,
	}
	if len(teams.DroppedByReason) > 0 {
		report.DroppedBy = make(map[domain.UnclassifiedReason]int, len(teams.DroppedByReason))
		for reason, count := range teams.DroppedByReason {
			report.DroppedBy[reason] = count
		}
	}

	var fast, slow int
	for _, t := range teams.Teams() {
		branches := strings.Join(t.Branches, branchSeparator)

		report.Rows = append(report.Rows, domain.SpreadsheetRow{
			Team:     t.Name,
			Total:    t.Total,
			Fast:     t.Fast,
			Slow:     t.Slow,
			Branches: branches,
			Releases: strings.Join(t.Titles, "\n"),
		})
		report.TeamTotals = append(report.TeamTotals, domain.SeriesPoint{Label: t.Name, Value: t.Total})
		report.Summary = append(report.Summary, domain.SummaryRow{
			Team:     t.Name,
			Total:    t.Total,
			Fast:     t.Fast,
			Slow:     t.Slow,
			Branches: branches,
		})
		report.TeamPages = append(report.TeamPages, teamPage(t, branches))
		report.ProdVsUAT = append(report.ProdVsUAT, domain.ProdUATPoint{
			Team: t.Name,
			Prod: t.Prod,
			UAT:  t.Total - t.Prod,
		})
		report.TotalProd += t.Prod

		if summary, ok := leadTimeSummary(t); ok {
			report.LeadTimes = append(report.LeadTimes, summary)
		}

		fast += t.Fast
		slow += t.Slow
	}

	report.Cadence = domain.CadenceSplit{Fast: max(fast, 0), Slow: max(slow, 0)}
	report.Cadence.NoData = report.Cadence.Fast == 0 && report.Cadence.Slow == 0
	return report
}

func teamPage(t *domain.TeamAggregate, branches string) domain.TeamPage {
	releases := make([]domain.NumberedTitle, 0, len(t.Titles))
	for i, title := range t.Titles {
		releases = append(releases, domain.NumberedTitle{Index: i + 1, Title: title})
	}
	return domain.TeamPage{
		Team:     t.Name,
		Total:    t.Total,
		Fast:     t.Fast,
		Slow:     t.Slow,
		Branches: branches,
		Releases: releases,
	}
}

// leadTimeSummary computes created-to-merged statistics for one team.
func leadTimeSummary(t *domain.TeamAggregate) (domain.LeadTimeSummary, bool) {
	data := stats.Float64Data(t.LeadTimeHours)
	if data.Len() == 0 {
		return domain.LeadTimeSummary{}, false
	}

	mean, err := data.Mean()
	if err != nil {
		return domain.LeadTimeSummary{}, false
	}
	median, err := data.Median()
	if err != nil {
		return domain.LeadTimeSummary{}, false
	}
	p90, err := data.PercentileNearestRank(90)
	if err != nil {
		return domain.LeadTimeSummary{}, false
	}

	return domain.LeadTimeSummary{
		Team:        t.Name,
		Count:       data.Len(),
		MeanHours:   round2(mean),
		MedianHours: round2(median),
		P90Hours:    round2(p90),
	}, true
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
