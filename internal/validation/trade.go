package validation

import (
	"fmt"
	"strings"

	"github.com/tikalinvest/portfolio-client/internal/api/request"
	"github.com/tikalinvest/portfolio-client/internal/model"
)

// ValidTradeKind contains the allowed trade kind values.
var ValidTradeKind = map[string]bool{
	model.TransactionBuy: true, model.TransactionSell: true,
}

// ValidateExecuteTrade validates a trade execution request.
//
// Required fields:
//   - symbol: non-empty ticker
//   - kind: buy or sell
//   - shares: must be positive
//   - pricePerShare: must be positive
//
// Returns a validation Error with field-specific messages if validation fails.
func ValidateExecuteTrade(req request.ExecuteTradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if strings.TrimSpace(req.Kind) == "" {
		errors["kind"] = "kind is required"
	} else if !ValidTradeKind[req.Kind] {
		errors["kind"] = fmt.Sprintf("invalid kind: %s", req.Kind)
	}

	if !req.Shares.IsPositive() {
		errors["shares"] = "shares must be positive"
	}

	if !req.PricePerShare.IsPositive() {
		errors["pricePerShare"] = "pricePerShare must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
