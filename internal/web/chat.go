package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
	"github.com/dkozlov/gate_rollover_bot/internal/usecase"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleChat drives one wizard conversation over a websocket. The
// wizard lives on this connection's stack, so two operators talking to
// the bot at once cannot leak state into each other's run.
//
// "/cancel" abandons the conversation at any pre-execution step. Once
// the entry order is out there is no cancelling the run; the socket
// just reports what happened.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	wizard := usecase.NewWizard()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(wizard.Prompt())); err != nil {
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		input := strings.TrimSpace(string(msg))

		if input == "/cancel" {
			conn.WriteMessage(websocket.TextMessage, []byte("Cancelled."))
			return
		}

		reply, finished := wizard.Handle(input)
		if reply != "" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
		if !finished {
			continue
		}
		if !wizard.Done() {
			// Declined at the confirmation step.
			return
		}

		s.runStrategy(r.Context(), conn, wizard.Params())
		return
	}
}

func (s *Server) runStrategy(ctx context.Context, conn *websocket.Conn, params domain.StrategyParameters) {
	conn.WriteMessage(websocket.TextMessage, []byte("Executing strategy..."))

	result, err := s.executor.Execute(ctx, params)
	if err != nil {
		s.logger.Error("strategy run failed",
			zap.String("symbol", params.Symbol),
			zap.Error(err),
		)
		conn.WriteMessage(websocket.TextMessage, []byte(formatFatal(err)))
		return
	}

	run := &domain.RunRecord{Params: params, Result: *result, CreatedAt: time.Now().UTC()}
	if err := s.runRepo.SaveRun(ctx, run); err != nil {
		s.logger.Error("failed to journal run", zap.Error(err))
	}

	conn.WriteMessage(websocket.TextMessage, []byte(formatResult(result)))
}

func formatFatal(err error) string {
	var (
		priceErr *domain.PriceResolutionError
		levErr   *domain.LeverageSetupError
		entryErr *domain.EntryOrderError
	)
	switch {
	case errors.As(err, &priceErr):
		return "Could not resolve the entry price; nothing was executed: " + priceErr.Cause.Error()
	case errors.As(err, &levErr):
		return "Could not set leverage; nothing was executed: " + levErr.Cause.Error()
	case errors.As(err, &entryErr):
		return "Entry order failed; no rollover orders were attempted: " + entryErr.Cause.Error()
	default:
		return "Strategy failed: " + err.Error()
	}
}

func formatResult(result *domain.StrategyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Strategy executed.\n")
	fmt.Fprintf(&b, "Entry order %d at %s (%d contracts)\n",
		result.EntryOrderID, result.EntryPrice.String(), result.ContractSize)
	fmt.Fprintf(&b, "Rollover orders (%d/%d placed):\n", result.PlacedLevels(), len(result.Levels))
	for _, l := range result.Levels {
		switch l.Status {
		case domain.StatusPlaced:
			fmt.Fprintf(&b, "  #%d trigger %s -> order %d\n", l.Index, l.TriggerPrice.String(), l.OrderID)
		case domain.StatusFailed:
			fmt.Fprintf(&b, "  #%d trigger %s -> FAILED: %v\n", l.Index, l.TriggerPrice.String(), l.Err)
		default:
			fmt.Fprintf(&b, "  #%d trigger %s -> %s\n", l.Index, l.TriggerPrice.String(), l.Status)
		}
	}
	return b.String()
}
