// Package render writes run artifacts: the records table, the report workbook and the report PDF.
package render

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/release-stats/internal/domain"
)

const (
	colNumber    = "PR Number"
	colTitle     = "Title"
	colMergedAt  = "Merged At"
	colTeam      = "Team Name"
	colRelease   = "Release Type"
	colBranch    = "Branch"
	colCreatedAt = "Created At"

	// Spreadsheet tools prepend it when saving as UTF-8 CSV.
	utf8BOM = "\ufeff"
)

var recordHeader = []string{colNumber, colTitle, colMergedAt, colTeam, colRelease, colBranch, colCreatedAt}

// RecordsFileName is the records table name for a date range.
func RecordsFileName(start, end string) string {
	return fmt.Sprintf("merged_prs_%s_to_%s.csv", start, end)
}

// WriteRecordsFile writes the records table to path, creating parent directories.
func WriteRecordsFile(path string, records []domain.ClassifiedPullRequest) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create records file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteRecords(f, records)
}

// WriteRecords writes one row per pull request.
func WriteRecords(w io.Writer, records []domain.ClassifiedPullRequest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return fmt.Errorf("failed to write records header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Number),
			rec.Title,
			formatTime(rec.MergedAt),
			rec.Team,
			string(rec.Cadence),
			rec.Branch.Name,
			"",
		}
		if !rec.CreatedAt.IsZero() {
			row[6] = rec.CreatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", rec.Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRecordsFile reads a records table written by WriteRecordsFile.
func ReadRecordsFile(path string, branches []domain.Branch) ([]domain.ClassifiedPullRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()
	return ReadRecords(f, branches)
}

// ReadRecords parses a records table. Columns are located by header name; the
// Created At column is optional. Branch names are resolved against branches;
// unknown names keep an empty kind. Team and cadence are returned as stored.
func ReadRecords(r io.Reader, branches []domain.Branch) ([]domain.ClassifiedPullRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("records file is empty")
		}
		return nil, fmt.Errorf("failed to read records header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range recordHeader[:6] {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("records file is missing column %q", name)
		}
	}

	byName := make(map[string]domain.Branch, len(branches))
	for _, b := range branches {
		byName[b.Name] = b
	}

	var records []domain.ClassifiedPullRequest
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read records line %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		number, err := strconv.Atoi(field(colNumber))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid PR number: %w", line, err)
		}
		rec := domain.ClassifiedPullRequest{
			PullRequest: domain.PullRequest{Number: number, Title: field(colTitle)},
			Classification: domain.Classification{
				Team:    field(colTeam),
				Cadence: domain.Cadence(field(colRelease)),
			},
		}
		if rec.MergedAt, err = parseTime(field(colMergedAt)); err != nil {
			return nil, fmt.Errorf("line %d: invalid merge time: %w", line, err)
		}
		created, err := parseTime(field(colCreatedAt))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid creation time: %w", line, err)
		}
		if created != nil {
			rec.CreatedAt = *created
		}
		name := field(colBranch)
		if b, ok := byName[name]; ok {
			rec.Branch = b
		} else {
			rec.Branch = domain.Branch{Name: name}
		}
		records = append(records, rec)
	}
	return records, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
