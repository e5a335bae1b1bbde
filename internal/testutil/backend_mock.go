package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/model"
)

// MockBackend is a test double for the backend client. It satisfies the
// PriceFeed, TradeBackend and BalanceSource interfaces the services consume
// and counts calls so tests can assert on fetch behavior (for example the
// TTL boundary: fresh reads must perform no network call).
type MockBackend struct {
	mu sync.Mutex

	// Bars is returned from GetHistory unless HistoryErr is set.
	Bars       []model.Bar
	HistoryErr error
	// Quotes is returned from GetQuotes unless QuotesErr is set.
	Quotes    map[string]model.Quote
	QuotesErr error
	// TradeErr rejects SubmitTrade when set; otherwise the request is
	// confirmed with a generated id and the current time.
	TradeErr error
	// Balance is returned from GetBalance unless BalanceErr is set.
	Balance    decimal.Decimal
	BalanceErr error

	HistoryCalls int
	QuoteCalls   int
	TradeCalls   int
	BalanceCalls int
}

// NewMockBackend creates a mock with 30 days of bars and no errors.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Bars:   MakeBars(30, 100),
		Quotes: map[string]model.Quote{},
	}
}

// GetHistory returns the configured bars or error.
func (m *MockBackend) GetHistory(_ context.Context, _ string) ([]model.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryCalls++
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	return m.Bars, nil
}

// GetQuotes returns the configured quotes or error.
func (m *MockBackend) GetQuotes(_ context.Context, symbols []string) (map[string]model.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteCalls++
	if m.QuotesErr != nil {
		return nil, m.QuotesErr
	}
	out := make(map[string]model.Quote, len(symbols))
	for _, s := range symbols {
		if q, ok := m.Quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

// SubmitTrade confirms the request at its own price unless TradeErr is set.
func (m *MockBackend) SubmitTrade(_ context.Context, req model.TradeRequest) (model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TradeCalls++
	if m.TradeErr != nil {
		return model.Transaction{}, m.TradeErr
	}
	return model.Transaction{
		ID:            uuid.New().String(),
		Symbol:        req.Symbol,
		Kind:          req.Kind,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// GetBalance returns the configured authoritative balance.
func (m *MockBackend) GetBalance(_ context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BalanceCalls++
	if m.BalanceErr != nil {
		return decimal.Zero, m.BalanceErr
	}
	return m.Balance, nil
}

// WithHistoryError configures GetHistory to fail.
func (m *MockBackend) WithHistoryError(err error) *MockBackend {
	m.HistoryErr = err
	return m
}

// WithQuote adds a quote for a symbol.
func (m *MockBackend) WithQuote(symbol string, price, changePercent float64) *MockBackend {
	m.Quotes[symbol] = model.Quote{Symbol: symbol, Price: price, ChangePercent: changePercent}
	return m
}

// WithTradeError configures SubmitTrade to fail.
func (m *MockBackend) WithTradeError(err error) *MockBackend {
	m.TradeErr = err
	return m
}
