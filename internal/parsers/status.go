// Package parsers reads the fixed-format .params text files produced by
// the trading models: daily status values, portfolio holdings blocks,
// stock rankings and backtest portfolio values. Each parser hands back
// typed records; database mapping happens in the ingest layer.
package parsers

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// StatusRecord is one daily cumulative value line from a
// PyTAAA_status.params file.
type StatusRecord struct {
	Date        time.Time
	BaseValue   float64
	Signal      int
	TradedValue float64
}

// statusLinePattern matches: cumu_value: YYYY-MM-DD HH:MM.SS.SS value
var statusLinePattern = regexp.MustCompile(`^cumu_value:\s+(\d{4}-\d{1,2}-\d{1,2})\s+[\d:.]+\s+([\d.]+)`)

// ParseStatusFile parses a PyTAAA_status.params file into daily
// performance records. Lines that are not cumu_value entries (comments,
// section headers, blanks) are skipped; malformed cumu_value lines are
// an error.
func ParseStatusFile(path string) ([]StatusRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open status file: %w", err)
	}
	defer f.Close()

	var records []StatusRecord

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines, comments, and section headers
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}

		m := statusLinePattern.FindStringSubmatch(line)
		if m == nil {
			// Not a cumu_value line
			continue
		}

		date, err := parseDate(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q: %w", lineNum, m[1], err)
		}
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q: %w", lineNum, m[2], err)
		}

		records = append(records, StatusRecord{
			Date:        date,
			BaseValue:   value, // same value for both until signals are ingested
			Signal:      0,
			TradedValue: value,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read status file: %w", err)
	}

	return records, nil
}

// parseDate accepts YYYY-MM-DD with or without zero padding
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-1-2"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}
