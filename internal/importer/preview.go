package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/araddon/dateparse"
)

// PreviewResult summarizes how a column mapping would apply to an upload
type PreviewResult struct {
	TotalRows   int                 `json:"total_rows"`
	ValidRows   int                 `json:"valid"`
	InvalidRows int                 `json:"invalid"`
	Errors      []RowError          `json:"errors"`
	SampleRows  []map[string]string `json:"sample_rows"`
}

// Preview re-reads a stored upload, applies the column mapping to every
// row and validates the result without touching storage. The first ten
// mapped rows come back as samples.
func (im *Importer) Preview(filename string, mapping map[string]string) (*PreviewResult, error) {
	normalized, err := normalizeMapping(mapping)
	if err != nil {
		return nil, err
	}

	f, err := im.open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	result := &PreviewResult{}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV row %d: %w", row+1, err)
		}
		row++
		result.TotalRows++

		mapped := applyMapping(header, record, normalized)
		if problems := validateRow(mapped); len(problems) > 0 {
			result.InvalidRows++
			result.Errors = append(result.Errors, RowError{
				Row:   row,
				Error: strings.Join(problems, "; "),
			})
		} else {
			result.ValidRows++
		}

		if len(result.SampleRows) < 10 {
			result.SampleRows = append(result.SampleRows, mapped)
		}
	}
	return result, nil
}

// validateRow returns every problem with one mapped row
func validateRow(mapped map[string]string) []string {
	var problems []string

	if mapped["title"] == "" {
		problems = append(problems, "title is required")
	}
	url := mapped["url"]
	if url == "" {
		problems = append(problems, "url is required")
	} else if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		problems = append(problems, "url must start with http:// or https://")
	}
	if date := mapped["published_at"]; date != "" {
		if _, err := dateparse.ParseAny(date); err != nil {
			problems = append(problems, fmt.Sprintf("unparseable date: %s", date))
		}
	}

	return problems
}
