package parsers

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// HoldingRecord is a single position inside a holdings snapshot
type HoldingRecord struct {
	Ticker        string
	Shares        float64
	PurchasePrice float64
	CurrentPrice  float64
	Weight        float64
	BuyDate       time.Time
}

// SnapshotRecord is one TradeDate block from a PyTAAA_holdings.params
// file. The CASH pseudo-ticker is folded into TotalValue rather than
// kept as a holding.
type SnapshotRecord struct {
	Date       time.Time
	TotalValue float64
	Holdings   []HoldingRecord
}

// ParseHoldingsFile parses a PyTAAA_holdings.params file into portfolio
// snapshots. The format repeats blocks of:
//
//	TradeDate: YYYY-M-D
//	stocks:   TICKER1 TICKER2 CASH
//	shares:   100.0   200.0   1000.0
//	buyprice: 50.0    75.0    1.0
//
// Blocks with mismatched column counts are dropped, matching the
// tolerant behavior the dashboards rely on for legacy files.
func ParseHoldingsFile(path string) ([]SnapshotRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holdings file: %w", err)
	}
	defer f.Close()

	var snapshots []SnapshotRecord
	var (
		currentDate   time.Time
		currentStocks []string
		currentShares []float64
		currentPrices []float64
	)

	flush := func() {
		if currentDate.IsZero() || len(currentStocks) == 0 {
			return
		}
		if snap, ok := buildSnapshot(currentDate, currentStocks, currentShares, currentPrices); ok {
			snapshots = append(snapshots, snap)
		}
	}

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "TradeDate:"):
			flush()

			dateStr := strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			date, err := parseDate(dateStr)
			if err != nil {
				// Skip blocks with unreadable dates
				currentDate = time.Time{}
				currentStocks = nil
				continue
			}
			currentDate = date
			currentStocks = nil
			currentShares = nil
			currentPrices = nil

		case strings.HasPrefix(line, "cumulativecashin:"):
			continue

		case strings.HasPrefix(line, "stocks:"):
			currentStocks = strings.Fields(strings.SplitN(line, ":", 2)[1])

		case strings.HasPrefix(line, "shares:"):
			currentShares, err = parseFloats(strings.SplitN(line, ":", 2)[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid shares: %w", lineNum, err)
			}

		case strings.HasPrefix(line, "buyprice:"):
			currentPrices, err = parseFloats(strings.SplitN(line, ":", 2)[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid buyprice: %w", lineNum, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read holdings file: %w", err)
	}

	// Last block
	flush()

	return snapshots, nil
}

// buildSnapshot assembles one snapshot from parsed columns. Returns
// false when the columns disagree in length.
func buildSnapshot(date time.Time, stocks []string, shares, prices []float64) (SnapshotRecord, bool) {
	if len(stocks) == 0 || len(stocks) != len(shares) || len(stocks) != len(prices) {
		return SnapshotRecord{}, false
	}

	snap := SnapshotRecord{Date: date}

	for i, ticker := range stocks {
		if strings.EqualFold(ticker, "CASH") {
			// Cash shares are already dollars
			snap.TotalValue += shares[i]
			continue
		}

		snap.Holdings = append(snap.Holdings, HoldingRecord{
			Ticker:        strings.ToUpper(ticker),
			Shares:        shares[i],
			PurchasePrice: prices[i],
			CurrentPrice:  prices[i], // the file carries no current price
			BuyDate:       date,
		})
		snap.TotalValue += shares[i] * prices[i]
	}

	if snap.TotalValue > 0 {
		for i := range snap.Holdings {
			h := &snap.Holdings[i]
			h.Weight = (h.Shares * h.CurrentPrice) / snap.TotalValue
		}
	}

	return snap, true
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", field, err)
		}
		values = append(values, v)
	}
	return values, nil
}
