package contracts

import (
	"time"

	"github.com/google/uuid"
)

// IndexType identifies the stock universe a model trades
type IndexType string

const (
	IndexNasdaq100 IndexType = "NASDAQ_100"
	IndexSP500     IndexType = "SP_500"
)

// Valid reports whether t is a known index type
func (t IndexType) Valid() bool {
	return t == IndexNasdaq100 || t == IndexSP500
}

// TradingModel is a named trading strategy producing a daily portfolio
// value series. A meta-model is a model whose strategy is to pick one of
// several sub-models to follow at each rebalancing point.
type TradingModel struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IndexType   IndexType `json:"index_type"`
	IsMeta      bool      `json:"is_meta"`
}

// PerformanceMetric is one daily performance record for a model
type PerformanceMetric struct {
	ModelID     uuid.UUID `json:"model_id"`
	Date        time.Time `json:"date"`
	BaseValue   float64   `json:"base_value"`
	Signal      int       `json:"signal"`
	TradedValue float64   `json:"traded_value"`
	DailyReturn *float64  `json:"daily_return,omitempty"`
}

// PortfolioSnapshot is the state of a model's portfolio on one date
type PortfolioSnapshot struct {
	ID               uuid.UUID          `json:"id"`
	ModelID          uuid.UUID          `json:"model_id"`
	Date             time.Time          `json:"date"`
	TotalValue       float64            `json:"total_value"`
	ActiveSubModelID *uuid.UUID         `json:"active_sub_model_id,omitempty"`
	Holdings         []PortfolioHolding `json:"holdings,omitempty"`
}

// PortfolioHolding is a single position inside a snapshot
type PortfolioHolding struct {
	Ticker        string     `json:"ticker"`
	Shares        float64    `json:"shares"`
	PurchasePrice float64    `json:"purchase_price"`
	CurrentPrice  float64    `json:"current_price"`
	Weight        float64    `json:"weight"`
	Rank          *int       `json:"rank,omitempty"`
	BuyDate       *time.Time `json:"buy_date,omitempty"`
}

// BacktestPoint is one daily backtest record for a model
type BacktestPoint struct {
	ModelID       uuid.UUID `json:"model_id"`
	Date          time.Time `json:"date"`
	BuyHoldValue  float64   `json:"buy_hold_value"`
	TradedValue   float64   `json:"traded_value"`
	NewHighs      int       `json:"new_highs"`
	NewLows       int       `json:"new_lows"`
	SelectedModel string    `json:"selected_model,omitempty"`
}

// StockRank is one entry of a model's daily top-N stock ranking
type StockRank struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Rank   int       `json:"rank"`
	Score  *float64  `json:"score,omitempty"`
}

// ValuePoint is one (date, portfolio value) observation
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ValueSeries is an ascending date-ordered sequence of observations
// for one model. Duplicate dates are assumed absent but not enforced.
type ValueSeries []ValuePoint

// Values returns just the value column, in series order
func (s ValueSeries) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Between returns the points with from <= date <= to, inclusive on
// both ends, preserving order.
func (s ValueSeries) Between(from, to time.Time) ValueSeries {
	filtered := make(ValueSeries, 0, len(s))
	for _, p := range s {
		if !p.Date.Before(from) && !p.Date.After(to) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
