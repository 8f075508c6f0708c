package parsers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRanksFile(t *testing.T) {
	path := writeTempFile(t, "PyTAAA_ranks.params", `
[Ranks]
# 2024-01-02
1: AAPL 0.95
2: MSFT 0.91
3  NVDA

# 2024-01-03
1: NVDA 0.97
`)

	ranks, err := ParseRanksFile(path)
	require.NoError(t, err)
	require.Len(t, ranks, 4)

	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, jan2, ranks[0].Date)
	assert.Equal(t, 1, ranks[0].Rank)
	assert.Equal(t, "AAPL", ranks[0].Ticker)
	require.NotNil(t, ranks[0].Score)
	assert.Equal(t, 0.95, *ranks[0].Score)

	// Score column is optional
	assert.Equal(t, "NVDA", ranks[2].Ticker)
	assert.Equal(t, 3, ranks[2].Rank)
	assert.Nil(t, ranks[2].Score)

	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), ranks[3].Date)
	assert.Equal(t, "NVDA", ranks[3].Ticker)
}

// Rank lines before the first date marker have no date to attach to and
// are dropped.
func TestParseRanksFile_OrphanRankLines(t *testing.T) {
	path := writeTempFile(t, "PyTAAA_ranks.params", `
1: AAPL 0.95
# 2024-01-02
1: MSFT 0.91
`)

	ranks, err := ParseRanksFile(path)
	require.NoError(t, err)
	require.Len(t, ranks, 1)
	assert.Equal(t, "MSFT", ranks[0].Ticker)
}

func TestParseRanksFile_Empty(t *testing.T) {
	path := writeTempFile(t, "PyTAAA_ranks.params", "[Ranks]\n")

	ranks, err := ParseRanksFile(path)
	require.NoError(t, err)
	assert.Empty(t, ranks)
}
