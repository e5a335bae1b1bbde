package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tikalinvest/portfolio-client/internal/api/handlers"
	"github.com/tikalinvest/portfolio-client/internal/api/response"
	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/testutil"
)

// TestTradeHandler_Execute tests the trade endpoint's status code mapping.
//
// WHY: The UI branches on status and reason: 400 with a machine-readable
// reason renders inline form errors, 422 shows the backend's own wording,
// 502 prompts a retry by the user. Wrong mapping breaks those screens.
func TestTradeHandler_Execute(t *testing.T) {
	t.Run("confirmed trade returns 201 with the result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "2000")
		trade, _ := testutil.NewTestTradeService(t, db, testutil.NewMockBackend())
		handler := handlers.NewTradeHandler(trade)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trade", map[string]any{
			"symbol":        "AAPL",
			"kind":          "buy",
			"shares":        "10",
			"pricePerShare": "150",
		})
		rec := httptest.NewRecorder()
		handler.Execute(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var result model.TradeResult
		testutil.DecodeJSON(t, rec, &result)
		if result.State != model.TradeConfirmed {
			t.Errorf("Expected state confirmed, got %s", result.State)
		}
		if !result.NewBalance.Equal(testutil.Dec(t, "500")) {
			t.Errorf("Expected new balance 500, got %s", result.NewBalance)
		}
	})

	t.Run("insufficient funds returns 400 with reason code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "100")
		backend := testutil.NewMockBackend()
		trade, _ := testutil.NewTestTradeService(t, db, backend)
		handler := handlers.NewTradeHandler(trade)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trade", map[string]any{
			"symbol":        "AAPL",
			"kind":          "buy",
			"shares":        "10",
			"pricePerShare": "150",
		})
		rec := httptest.NewRecorder()
		handler.Execute(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rec.Code)
		}
		var errResp response.ErrorResponse
		testutil.DecodeJSON(t, rec, &errResp)
		if errResp.Reason != apperrors.ReasonInsufficientFunds {
			t.Errorf("Expected reason insufficient_funds, got %q", errResp.Reason)
		}
		if backend.TradeCalls != 0 {
			t.Errorf("Expected no backend call, got %d", backend.TradeCalls)
		}
	})

	t.Run("insufficient shares returns 400 with reason code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "2000")
		trade, _ := testutil.NewTestTradeService(t, db, testutil.NewMockBackend())
		handler := handlers.NewTradeHandler(trade)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trade", map[string]any{
			"symbol":        "AAPL",
			"kind":          "sell",
			"shares":        "5",
			"pricePerShare": "150",
		})
		rec := httptest.NewRecorder()
		handler.Execute(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rec.Code)
		}
		var errResp response.ErrorResponse
		testutil.DecodeJSON(t, rec, &errResp)
		if errResp.Reason != apperrors.ReasonInsufficientShares {
			t.Errorf("Expected reason insufficient_shares, got %q", errResp.Reason)
		}
	})

	t.Run("backend rejection returns 422 with the backend's wording", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "2000")
		backend := testutil.NewMockBackend().WithTradeError(&apperrors.RejectionError{
			Reason: apperrors.ReasonMarketClosed,
			Detail: "market is closed until 09:30 ET",
		})
		trade, _ := testutil.NewTestTradeService(t, db, backend)
		handler := handlers.NewTradeHandler(trade)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trade", map[string]any{
			"symbol":        "AAPL",
			"kind":          "buy",
			"shares":        "1",
			"pricePerShare": "150",
		})
		rec := httptest.NewRecorder()
		handler.Execute(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("Expected 422, got %d", rec.Code)
		}
		var errResp response.ErrorResponse
		testutil.DecodeJSON(t, rec, &errResp)
		if errResp.Reason != apperrors.ReasonMarketClosed {
			t.Errorf("Expected reason market_closed, got %q", errResp.Reason)
		}
		if errResp.Error != "market is closed until 09:30 ET" {
			t.Errorf("Expected the backend message verbatim, got %q", errResp.Error)
		}
	})

	t.Run("unreachable backend returns 502", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "2000")
		backend := testutil.NewMockBackend().WithTradeError(errTimeout{})
		trade, _ := testutil.NewTestTradeService(t, db, backend)
		handler := handlers.NewTradeHandler(trade)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trade", map[string]any{
			"symbol":        "AAPL",
			"kind":          "buy",
			"shares":        "1",
			"pricePerShare": "150",
		})
		rec := httptest.NewRecorder()
		handler.Execute(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("Expected 502, got %d", rec.Code)
		}
	})

	t.Run("validation failures return 400 without reaching the executor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "2000")
		backend := testutil.NewMockBackend()
		trade, _ := testutil.NewTestTradeService(t, db, backend)
		handler := handlers.NewTradeHandler(trade)

		cases := []map[string]any{
			{"symbol": "", "kind": "buy", "shares": "1", "pricePerShare": "150"},
			{"symbol": "AAPL", "kind": "hold", "shares": "1", "pricePerShare": "150"},
			{"symbol": "AAPL", "kind": "buy", "shares": "0", "pricePerShare": "150"},
			{"symbol": "AAPL", "kind": "buy", "shares": "1", "pricePerShare": "-1"},
		}
		for _, body := range cases {
			rec := httptest.NewRecorder()
			handler.Execute(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/trade", body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 for %v, got %d", body, rec.Code)
			}
		}
		if backend.TradeCalls != 0 {
			t.Errorf("Expected 0 backend calls, got %d", backend.TradeCalls)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "2000")
		trade, _ := testutil.NewTestTradeService(t, db, testutil.NewMockBackend())
		handler := handlers.NewTradeHandler(trade)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/trade", map[string]any{
			"symbol": "AAPL", "kind": "buy", "shares": "1", "pricePerShare": "150",
			"leverage": 10,
		})
		rec := httptest.NewRecorder()
		handler.Execute(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for unknown field, got %d", rec.Code)
		}
	})
}

type errTimeout struct{}

func (errTimeout) Error() string { return "backend request timed out" }
