package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// historyResponse is the raw payload of the historical-bars endpoint.
// Dates arrive as YYYY-MM-DD strings.
type historyResponse struct {
	Success    bool      `json:"success"`
	Historical []wireBar `json:"historical"`
	Detail     string    `json:"detail,omitempty"`
}

type wireBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// quotesResponse is the raw payload of the batch current-quote endpoint.
type quotesResponse struct {
	Success bool        `json:"success"`
	Quotes  []wireQuote `json:"quotes"`
	Detail  string      `json:"detail,omitempty"`
}

type wireQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// tradeRequest is the body sent to the trade endpoint. Field names follow
// the backend's wire contract.
type tradeRequest struct {
	Symbol          string          `json:"symbol"`
	TransactionType string          `json:"transaction_type"`
	Shares          decimal.Decimal `json:"shares"`
	PricePerShare   decimal.Decimal `json:"price_per_share"`
}

// tradeResponse is a confirmed transaction as returned by the backend,
// carrying the server-assigned id and timestamp.
type tradeResponse struct {
	ID              string          `json:"id"`
	Symbol          string          `json:"symbol"`
	TransactionType string          `json:"transaction_type"`
	Shares          decimal.Decimal `json:"shares"`
	PricePerShare   decimal.Decimal `json:"price_per_share"`
	CreatedAt       time.Time       `json:"created_at"`
}

// errorResponse is the backend's rejection envelope. Code is the
// machine-readable reason; Detail the human message.
type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// balanceResponse is the payload of the wallet balance endpoint.
type balanceResponse struct {
	Available decimal.Decimal `json:"available"`
}
