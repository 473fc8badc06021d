package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TimeInForce selects the order lifetime policy on the exchange.
type TimeInForce string

const (
	// TIFImmediateOrCancel together with price "0" signals a market order.
	TIFImmediateOrCancel TimeInForce = "ioc"
	// TIFGoodTillCancelled with a non-zero price is a resting limit order.
	TIFGoodTillCancelled TimeInForce = "gtc"
)

// Exchange defines the operations the strategy needs from the
// perpetual-futures exchange. Implementations perform one signed HTTP
// call per method and never retry; retry is an operator decision.
type Exchange interface {
	// GetTickerPrice returns the last traded price for the contract.
	GetTickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	// SetLeverage is idempotent from the caller's perspective.
	SetLeverage(ctx context.Context, symbol string, leverage int) error
	// PlaceOrder submits a long order and returns the exchange order id.
	// Size is a positive contract count; price "0" + ioc means market.
	PlaceOrder(ctx context.Context, symbol string, size int64, price string, tif TimeInForce) (int64, error)

	GetAccountBalance(ctx context.Context) (decimal.Decimal, error)
	ListOpenOrders(ctx context.Context, symbol string) ([]*OpenOrder, error)
	CancelAllOrders(ctx context.Context, symbol string) error
}

// OpenOrder is a resting order as reported by the exchange.
type OpenOrder struct {
	ID        int64           `json:"id"`
	Contract  string          `json:"contract"`
	Size      int64           `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// RunRepository journals completed runs for operator review.
type RunRepository interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
}
