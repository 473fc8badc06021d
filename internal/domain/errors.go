package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPriceUnavailable is returned when the ticker endpoint answers
	// with an empty result set for the requested contract.
	ErrPriceUnavailable = errors.New("exchange returned no ticker for contract")

	// ErrInvalidPositionSize guards the executor against a non-positive
	// contract count. The calculator's 1-contract floor makes this
	// unreachable in normal operation.
	ErrInvalidPositionSize = errors.New("computed contract size is not positive")
)

// ExchangeRequestError is any non-success HTTP response or transport
// failure from the exchange. Label and Message carry the exchange's
// own error body when present.
type ExchangeRequestError struct {
	Status  int
	Label   string
	Message string
	Body    string
}

func (e *ExchangeRequestError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("exchange request failed: status=%d label=%s message=%s", e.Status, e.Label, e.Message)
	}
	return fmt.Sprintf("exchange request failed: status=%d body=%s", e.Status, e.Body)
}

// PriceResolutionError aborts a market-entry run whose ticker lookup failed.
type PriceResolutionError struct {
	Cause error
}

func (e *PriceResolutionError) Error() string {
	return fmt.Sprintf("resolving entry price: %v", e.Cause)
}

func (e *PriceResolutionError) Unwrap() error { return e.Cause }

// LeverageSetupError aborts a run whose leverage call failed; no
// position can be safely sized without a known leverage.
type LeverageSetupError struct {
	Cause error
}

func (e *LeverageSetupError) Error() string {
	return fmt.Sprintf("setting leverage: %v", e.Cause)
}

func (e *LeverageSetupError) Unwrap() error { return e.Cause }

// EntryOrderError aborts a run before any ladder order is attempted.
type EntryOrderError struct {
	Cause error
}

func (e *EntryOrderError) Error() string {
	return fmt.Sprintf("placing entry order: %v", e.Cause)
}

func (e *EntryOrderError) Unwrap() error { return e.Cause }

// RolloverOrderError records a single failed rung. It is stored on the
// level, never returned from the executor: one bad rung must not stop
// the rest of the ladder.
type RolloverOrderError struct {
	Index int
	Cause error
}

func (e *RolloverOrderError) Error() string {
	return fmt.Sprintf("rollover order %d: %v", e.Index, e.Cause)
}

func (e *RolloverOrderError) Unwrap() error { return e.Cause }
