package model

// Quote is the current price for a symbol as returned by the backend batch
// quote endpoint.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}
