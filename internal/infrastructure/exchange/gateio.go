package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
)

// GateBaseURL already carries the /api/v4 prefix; signed paths do not
// repeat it.
const GateBaseURL = "https://api.gateio.ws/api/v4"

const settleCurrency = "usdt"

// GateAdapter performs signed REST calls against the Gate.io futures
// API. One reusable http.Client per instance; no retries here.
type GateAdapter struct {
	signer  *Signer
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGateAdapter(apiKey, apiSecret, baseURL string, logger *zap.Logger) *GateAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GateAdapter{
		signer:  NewSigner(apiKey, apiSecret),
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (g *GateAdapter) sendRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = b
	}

	qs := canonicalQuery(query)
	reqURL := g.baseURL + path
	if qs != "" {
		reqURL += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for k, v := range g.signer.Headers(method, path, qs, body) {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &domain.ExchangeRequestError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExchangeRequestError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Label   string `json:"label"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &apiErr)
		g.logger.Warn("exchange request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("label", apiErr.Label),
		)
		return nil, &domain.ExchangeRequestError{
			Status:  resp.StatusCode,
			Label:   apiErr.Label,
			Message: apiErr.Message,
			Body:    string(respBody),
		}
	}

	return respBody, nil
}

// GetTickerPrice returns the last traded price for the contract.
func (g *GateAdapter) GetTickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("contract", symbol)

	resp, err := g.sendRequest(ctx, http.MethodGet, "/futures/"+settleCurrency+"/tickers", query, nil)
	if err != nil {
		return decimal.Zero, err
	}

	var tickers []struct {
		Contract string `json:"contract"`
		Last     string `json:"last"`
	}
	if err := json.Unmarshal(resp, &tickers); err != nil {
		return decimal.Zero, fmt.Errorf("decoding ticker response: %w", err)
	}
	if len(tickers) == 0 {
		return decimal.Zero, domain.ErrPriceUnavailable
	}

	price, err := decimal.NewFromString(tickers[0].Last)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing ticker price %q: %w", tickers[0].Last, err)
	}
	return price, nil
}

// SetLeverage updates the position leverage for the contract.
func (g *GateAdapter) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	payload := struct {
		Contract string `json:"contract"`
		Leverage string `json:"leverage"`
	}{
		Contract: symbol,
		Leverage: strconv.Itoa(leverage),
	}

	_, err := g.sendRequest(ctx, http.MethodPost, "/futures/"+settleCurrency+"/leverage", nil, payload)
	return err
}

// PlaceOrder submits a single futures order. Price "0" with tif "ioc"
// is a market order; a non-zero price with "gtc" rests on the book.
func (g *GateAdapter) PlaceOrder(ctx context.Context, symbol string, size int64, price string, tif domain.TimeInForce) (int64, error) {
	payload := struct {
		Contract string `json:"contract"`
		Size     int64  `json:"size"`
		Price    string `json:"price"`
		TIF      string `json:"tif"`
	}{
		Contract: symbol,
		Size:     size,
		Price:    price,
		TIF:      string(tif),
	}

	resp, err := g.sendRequest(ctx, http.MethodPost, "/futures/"+settleCurrency+"/orders", nil, payload)
	if err != nil {
		return 0, err
	}

	var order struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp, &order); err != nil {
		return 0, fmt.Errorf("decoding order response: %w", err)
	}

	g.logger.Info("order placed",
		zap.String("contract", symbol),
		zap.Int64("size", size),
		zap.String("price", price),
		zap.String("tif", string(tif)),
		zap.Int64("order_id", order.ID),
	)
	return order.ID, nil
}

// GetAccountBalance returns the total USDT futures account balance.
func (g *GateAdapter) GetAccountBalance(ctx context.Context) (decimal.Decimal, error) {
	resp, err := g.sendRequest(ctx, http.MethodGet, "/futures/"+settleCurrency+"/accounts", nil, nil)
	if err != nil {
		return decimal.Zero, err
	}

	var account struct {
		Total string `json:"total"`
	}
	if err := json.Unmarshal(resp, &account); err != nil {
		return decimal.Zero, fmt.Errorf("decoding account response: %w", err)
	}

	total, err := decimal.NewFromString(account.Total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing account total %q: %w", account.Total, err)
	}
	return total, nil
}

// ListOpenOrders returns the resting orders for the contract.
func (g *GateAdapter) ListOpenOrders(ctx context.Context, symbol string) ([]*domain.OpenOrder, error) {
	query := url.Values{}
	query.Set("contract", symbol)
	query.Set("status", "open")

	resp, err := g.sendRequest(ctx, http.MethodGet, "/futures/"+settleCurrency+"/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		ID         int64   `json:"id"`
		Contract   string  `json:"contract"`
		Size       int64   `json:"size"`
		Price      string  `json:"price"`
		Status     string  `json:"status"`
		CreateTime float64 `json:"create_time"`
	}
	if err := json.Unmarshal(resp, &raw); err != nil {
		return nil, fmt.Errorf("decoding orders response: %w", err)
	}

	orders := make([]*domain.OpenOrder, 0, len(raw))
	for _, o := range raw {
		price, err := decimal.NewFromString(o.Price)
		if err != nil {
			return nil, fmt.Errorf("parsing order price %q: %w", o.Price, err)
		}
		orders = append(orders, &domain.OpenOrder{
			ID:        o.ID,
			Contract:  o.Contract,
			Size:      o.Size,
			Price:     price,
			Status:    o.Status,
			CreatedAt: time.Unix(int64(o.CreateTime), 0),
		})
	}
	return orders, nil
}

// CancelAllOrders cancels every resting order on the contract. This is
// an operator action; the engine never calls it on its own.
func (g *GateAdapter) CancelAllOrders(ctx context.Context, symbol string) error {
	query := url.Values{}
	query.Set("contract", symbol)

	_, err := g.sendRequest(ctx, http.MethodDelete, "/futures/"+settleCurrency+"/orders", query, nil)
	return err
}
