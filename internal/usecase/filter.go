package usecase

import (
	"fmt"
	"time"

	"github.com/naka-gawa/release-stats/internal/domain"
)

// DateLayout is the calendar date format accepted on input.
const DateLayout = "2006-01-02"

// MergeWindow is an inclusive range of merge timestamps.
type MergeWindow struct {
	Start time.Time
	End   time.Time
}

// ParseMergeWindow builds a window from two calendar dates. Start is taken at
// 00:00:00 and end through 23:59:59 of its day, both in UTC.
func ParseMergeWindow(start, end string) (MergeWindow, error) {
	startDate, err := time.Parse(DateLayout, start)
	if err != nil {
		return MergeWindow{}, fmt.Errorf("invalid start date %q, use YYYY-MM-DD: %w", start, err)
	}
	endDate, err := time.Parse(DateLayout, end)
	if err != nil {
		return MergeWindow{}, fmt.Errorf("invalid end date %q, use YYYY-MM-DD: %w", end, err)
	}
	if endDate.Before(startDate) {
		return MergeWindow{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return MergeWindow{
		Start: startDate,
		End:   endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second),
	}, nil
}

// Contains reports whether t lies within the window, bounds included.
func (w MergeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// FilterMerged keeps the pull requests merged inside the window, preserving order.
func FilterMerged(prs []domain.PullRequest, window MergeWindow) []domain.PullRequest {
	filtered := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.MergedAt != nil && window.Contains(*pr.MergedAt) {
			filtered = append(filtered, pr)
		}
	}
	return filtered
}
