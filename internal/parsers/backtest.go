package parsers

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// BacktestRecord is one daily row from a backtest portfolio value file
type BacktestRecord struct {
	Date          time.Time
	BuyHoldValue  float64
	TradedValue   float64
	NewHighs      int
	NewLows       int
	SelectedModel string
}

// ParseBacktestFile parses a pyTAAAweb_backtestPortfolioValue.params
// file. Each data row has five whitespace-separated columns:
//
//	date buy_hold_value traded_value new_highs new_lows
//
// Meta-model files carry a sixth column naming the sub-model selected
// on that date. New-high and new-low counts are written as floats and
// truncated to integers. A file with no data rows is an error.
func ParseBacktestFile(path string) ([]BacktestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backtest file: %w", err)
	}
	defer f.Close()

	var records []BacktestRecord

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}

		date, err := parseDate(fields[0])
		if err != nil {
			// Header or other non-data row
			continue
		}

		values, err := parseFloats(strings.Join(fields[1:5], " "))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value: %w", lineNum, err)
		}

		rec := BacktestRecord{
			Date:         date,
			BuyHoldValue: values[0],
			TradedValue:  values[1],
			NewHighs:     int(values[2]),
			NewLows:      int(values[3]),
		}
		if len(fields) > 5 {
			rec.SelectedModel = fields[5]
		}

		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read backtest file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no backtest data rows in %s", path)
	}

	return records, nil
}
