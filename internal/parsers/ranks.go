package parsers

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
)

var (
	// rankDatePattern matches a date marker line: # YYYY-MM-DD
	rankDatePattern = regexp.MustCompile(`^#?\s*(\d{4}-\d{2}-\d{2})`)

	// rankLinePattern matches: rank: TICKER or rank TICKER score
	rankLinePattern = regexp.MustCompile(`^(\d+)[:\s]+([A-Z]+)(?:\s+([\d.]+))?`)
)

// ParseRanksFile parses a PyTAAA_ranks.params file into per-date stock
// rankings (top N per date, rank 1 = best). Rank lines before the first
// date marker are ignored.
func ParseRanksFile(path string) ([]contracts.StockRank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ranks file: %w", err)
	}
	defer f.Close()

	var rankings []contracts.StockRank
	var currentDate time.Time
	haveDate := false

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if m := rankDatePattern.FindStringSubmatch(line); m != nil {
			date, err := parseDate(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid date %q: %w", lineNum, m[1], err)
			}
			currentDate = date
			haveDate = true
			continue
		}

		m := rankLinePattern.FindStringSubmatch(line)
		if m == nil || !haveDate {
			continue
		}

		rank, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rank %q: %w", lineNum, m[1], err)
		}

		entry := contracts.StockRank{
			Date:   currentDate,
			Ticker: strings.ToUpper(m[2]),
			Rank:   rank,
		}
		if m[3] != "" {
			score, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid score %q: %w", lineNum, m[3], err)
			}
			entry.Score = &score
		}

		rankings = append(rankings, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ranks file: %w", err)
	}

	return rankings, nil
}
