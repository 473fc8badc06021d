package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
)

// defaultPlacementPause keeps sequential rung placements under the
// exchange request-rate ceiling. Fixed pause, not a derived back-off.
const defaultPlacementPause = 250 * time.Millisecond

// StrategyExecutor runs one rollover strategy end to end: resolve the
// entry price, set leverage, place the entry order, then place each
// ladder rung sequentially. Rung failures are recorded and skipped;
// failures before the first rung abort the run.
//
// An executor instance is safe to reuse across runs, but one run's
// state is owned by the single goroutine calling Execute.
type StrategyExecutor struct {
	exchange domain.Exchange
	logger   *zap.Logger
	pause    time.Duration
}

func NewStrategyExecutor(exchange domain.Exchange, logger *zap.Logger) *StrategyExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategyExecutor{
		exchange: exchange,
		logger:   logger,
		pause:    defaultPlacementPause,
	}
}

// SetPlacementPause overrides the pause between consecutive rung
// placements. Zero disables it (tests).
func (e *StrategyExecutor) SetPlacementPause(d time.Duration) {
	e.pause = d
}

// Execute runs the strategy once. The returned error is non-nil only
// for the fatal setup failures (price resolution, leverage, position
// sizing, entry order); individual rung failures are reported through
// the per-level statuses on the result.
func (e *StrategyExecutor) Execute(ctx context.Context, params domain.StrategyParameters) (*domain.StrategyResult, error) {
	entryPrice, err := e.resolveEntryPrice(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := e.exchange.SetLeverage(ctx, params.Symbol, params.Leverage); err != nil {
		return nil, &domain.LeverageSetupError{Cause: err}
	}

	contractSize := ComputeContractSize(entryPrice, params.MarginUSDT, params.Leverage)
	if contractSize <= 0 {
		return nil, domain.ErrInvalidPositionSize
	}

	result := &domain.StrategyResult{
		Symbol:       params.Symbol,
		EntryType:    params.EntryType,
		EntryPrice:   entryPrice,
		ContractSize: contractSize,
		Levels:       []*domain.RolloverLevel{},
		ExecutedAt:   time.Now().UTC(),
	}

	entryID, err := e.placeEntryOrder(ctx, params, entryPrice, contractSize)
	if err != nil {
		// Nothing on the book yet; abort before any rung is attempted.
		return result, &domain.EntryOrderError{Cause: err}
	}
	result.EntryOrderID = entryID

	e.logger.Info("entry order placed",
		zap.String("symbol", params.Symbol),
		zap.String("entry_type", string(params.EntryType)),
		zap.String("entry_price", entryPrice.String()),
		zap.Int64("contract_size", contractSize),
		zap.Int64("order_id", entryID),
	)

	result.Levels = BuildLadder(entryPrice, params.MarginUSDT, params.Leverage,
		params.RolloverCount, params.IntervalPercent)

	e.placeLadder(ctx, params.Symbol, result.Levels)

	e.logger.Info("strategy run finished",
		zap.String("symbol", params.Symbol),
		zap.Int("levels_placed", result.PlacedLevels()),
		zap.Int("levels_total", len(result.Levels)),
	)
	return result, nil
}

func (e *StrategyExecutor) resolveEntryPrice(ctx context.Context, params domain.StrategyParameters) (decimal.Decimal, error) {
	if params.EntryType == domain.EntryLimit {
		return params.EntryPrice, nil
	}
	price, err := e.exchange.GetTickerPrice(ctx, params.Symbol)
	if err != nil {
		return decimal.Zero, &domain.PriceResolutionError{Cause: err}
	}
	return price, nil
}

func (e *StrategyExecutor) placeEntryOrder(ctx context.Context, params domain.StrategyParameters, entryPrice decimal.Decimal, size int64) (int64, error) {
	if params.EntryType == domain.EntryMarket {
		return e.exchange.PlaceOrder(ctx, params.Symbol, size, "0", domain.TIFImmediateOrCancel)
	}
	return e.exchange.PlaceOrder(ctx, params.Symbol, size, entryPrice.String(), domain.TIFGoodTillCancelled)
}

// placeLadder places every rung in ascending order, best-effort: a
// failed rung is marked and the loop moves on, so one rejected order
// cannot prevent the rest of the ladder from being attempted.
func (e *StrategyExecutor) placeLadder(ctx context.Context, symbol string, levels []*domain.RolloverLevel) {
	for i, level := range levels {
		if i > 0 && e.pause > 0 {
			select {
			case <-time.After(e.pause):
			case <-ctx.Done():
			}
		}

		orderID, err := e.exchange.PlaceOrder(ctx, symbol, level.ContractSize,
			level.TriggerPrice.String(), domain.TIFGoodTillCancelled)
		if err != nil {
			level.Status = domain.StatusFailed
			level.Err = &domain.RolloverOrderError{Index: level.Index, Cause: err}
			e.logger.Warn("rollover order failed",
				zap.String("symbol", symbol),
				zap.Int("level", level.Index),
				zap.String("trigger_price", level.TriggerPrice.String()),
				zap.Error(err),
			)
			continue
		}

		level.Status = domain.StatusPlaced
		level.OrderID = orderID
		e.logger.Info("rollover order placed",
			zap.String("symbol", symbol),
			zap.Int("level", level.Index),
			zap.String("trigger_price", level.TriggerPrice.String()),
			zap.Int64("order_id", orderID),
		)
	}
}
