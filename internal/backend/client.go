package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/model"
)

// TokenSource supplies the bearer token for backend calls. The session
// repository implements it; tests use a static token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

// Token returns the static token.
func (s StaticToken) Token(_ context.Context) (string, error) { return string(s), nil }

// Client talks to the remote REST backend: historical bars, batch quotes,
// trade submission and the authoritative cash balance. It holds no state
// beyond request/response; the backend remains the only source of truth.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// GetHistory fetches the full ordered sequence of daily OHLCV bars for a
// symbol. The endpoint is not paginated; the backend returns everything it
// has in one response.
func (c *Client) GetHistory(ctx context.Context, symbol string) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/stocks/history/?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	var resp historyResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("history request for %s failed: %s", symbol, resp.Detail)
	}

	bars := make([]model.Bar, 0, len(resp.Historical))
	for _, b := range resp.Historical {
		date, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bar date %q: %w", b.Date, err)
		}
		bars = append(bars, model.Bar{
			Date:   date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return bars, nil
}

// GetQuotes fetches current prices for a batch of symbols in one call.
// Symbols the backend has no quote for are simply absent from the result.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	if len(symbols) == 0 {
		return map[string]model.Quote{}, nil
	}
	endpoint := fmt.Sprintf("%s/stocks/quotes/?symbols=%s", c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	var resp quotesResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("quote request failed: %s", resp.Detail)
	}

	quotes := make(map[string]model.Quote, len(resp.Quotes))
	for _, q := range resp.Quotes {
		quotes[q.Symbol] = model.Quote{
			Symbol:        q.Symbol,
			Price:         q.Price,
			ChangePercent: q.ChangePercent,
		}
	}
	return quotes, nil
}

// SubmitTrade sends a trade request and returns the backend-confirmed
// transaction. A 4xx response becomes a RejectionError carrying the
// backend's machine-readable reason verbatim; the caller must not retry.
func (c *Client) SubmitTrade(ctx context.Context, req model.TradeRequest) (model.Transaction, error) {
	endpoint := c.baseURL + "/portfolio/transactions/"

	body, err := json.Marshal(tradeRequest{
		Symbol:          req.Symbol,
		TransactionType: req.Kind,
		Shares:          req.Shares,
		PricePerShare:   req.PricePerShare,
	})
	if err != nil {
		return model.Transaction{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return model.Transaction{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, httpReq); err != nil {
		return model.Transaction{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("trade submission failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Transaction{}, err
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var rejection errorResponse
		if err := json.Unmarshal(data, &rejection); err != nil || rejection.Code == "" {
			return model.Transaction{}, &apperrors.RejectionError{
				Reason: "rejected",
				Detail: strings.TrimSpace(string(data)),
			}
		}
		return model.Transaction{}, &apperrors.RejectionError{
			Reason: rejection.Code,
			Detail: rejection.Detail,
		}
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return model.Transaction{}, fmt.Errorf("unexpected trade response status %d", resp.StatusCode)
	}

	var confirmed tradeResponse
	if err := json.Unmarshal(data, &confirmed); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse trade confirmation: %w", err)
	}
	if confirmed.ID == "" {
		return model.Transaction{}, fmt.Errorf("trade confirmation missing transaction id")
	}

	return model.Transaction{
		ID:            confirmed.ID,
		Symbol:        confirmed.Symbol,
		Kind:          confirmed.TransactionType,
		Shares:        confirmed.Shares,
		PricePerShare: confirmed.PricePerShare,
		Timestamp:     confirmed.CreatedAt,
	}, nil
}

// GetBalance fetches the authoritative available cash balance.
func (c *Client) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	endpoint := c.baseURL + "/wallet/balance/"

	var resp balanceResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Available, nil
}

// get executes an authorized GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d for %s", resp.StatusCode, endpoint)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse backend response: %w", err)
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}
