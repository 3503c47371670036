package domain

// NoDataLabel is shown in place of ratio charts when there is nothing to divide.
const NoDataLabel = "No release data"

// SpreadsheetRow is one row of the releases sheet.
type SpreadsheetRow struct {
	Team     string `json:"team"`
	Total    int    `json:"total"`
	Fast     int    `json:"fast"`
	Slow     int    `json:"slow"`
	Branches string `json:"branches"`
	Releases string `json:"releases"`
}

// SummaryRow is a SpreadsheetRow without the release titles.
type SummaryRow struct {
	Team     string `json:"team"`
	Total    int    `json:"total"`
	Fast     int    `json:"fast"`
	Slow     int    `json:"slow"`
	Branches string `json:"branches"`
}

// SeriesPoint is a single labelled value of a chart series.
type SeriesPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// CadenceSplit is the fast vs slow pie. NoData is set when both counts are zero,
// in which case renderers show NoDataLabel instead of a chart.
type CadenceSplit struct {
	Fast   int  `json:"fast"`
	Slow   int  `json:"slow"`
	NoData bool `json:"no_data"`
}

// NumberedTitle is a release title with its 1-based position on a team page.
type NumberedTitle struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// TeamPage is the detail page of a single team.
type TeamPage struct {
	Team     string          `json:"team"`
	Total    int             `json:"total"`
	Fast     int             `json:"fast"`
	Slow     int             `json:"slow"`
	Branches string          `json:"branches"`
	Releases []NumberedTitle `json:"releases"`
}

// ProdUATPoint is one group of the prod vs uat chart.
type ProdUATPoint struct {
	Team string `json:"team"`
	Prod int    `json:"prod"`
	UAT  int    `json:"uat"`
}

// LeadTimeSummary describes created-to-merged durations of one team, in hours.
type LeadTimeSummary struct {
	Team        string  `json:"team"`
	Count       int     `json:"count"`
	MeanHours   float64 `json:"mean_hours"`
	MedianHours float64 `json:"median_hours"`
	P90Hours    float64 `json:"p90_hours"`
}

// ReportBundle carries every table and series a renderer needs.
type ReportBundle struct {
	Rows       []SpreadsheetRow           `json:"rows"`
	TeamTotals []SeriesPoint              `json:"team_totals"`
	Cadence    CadenceSplit               `json:"cadence"`
	Summary    []SummaryRow               `json:"summary"`
	TeamPages  []TeamPage                 `json:"team_pages"`
	ProdVsUAT  []ProdUATPoint             `json:"prod_vs_uat"`
	TotalProd  int                        `json:"total_prod"`
	LeadTimes  []LeadTimeSummary          `json:"lead_times"`
	Dropped    int                        `json:"dropped"`
	DroppedBy  map[UnclassifiedReason]int `json:"dropped_by_reason,omitempty"`
}
