package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.runRepo.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list runs", zap.Error(err))
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	type runView struct {
		ID           int64       `json:"id"`
		Symbol       string      `json:"symbol"`
		EntryType    string      `json:"entry_type"`
		EntryPrice   string      `json:"entry_price"`
		Leverage     int         `json:"leverage"`
		MarginUSDT   string      `json:"margin_usdt"`
		ContractSize int64       `json:"contract_size"`
		EntryOrderID int64       `json:"entry_order_id"`
		Levels       interface{} `json:"levels"`
		ExecutedAt   string      `json:"executed_at"`
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{
			ID:           run.ID,
			Symbol:       run.Params.Symbol,
			EntryType:    string(run.Params.EntryType),
			EntryPrice:   run.Result.EntryPrice.String(),
			Leverage:     run.Params.Leverage,
			MarginUSDT:   run.Params.MarginUSDT.String(),
			ContractSize: run.Result.ContractSize,
			EntryOrderID: run.Result.EntryOrderID,
			Levels:       run.Result.Levels,
			ExecutedAt:   run.Result.ExecutedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	total, err := s.exchange.GetAccountBalance(r.Context())
	if err != nil {
		s.logger.Error("Failed to get balance", zap.Error(err))
		http.Error(w, "Failed to get balance", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"total_usdt": total.String()})
}

func (s *Server) handleOpenOrders(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	orders, err := s.exchange.ListOpenOrders(r.Context(), symbol)
	if err != nil {
		s.logger.Error("Failed to list open orders", zap.Error(err))
		http.Error(w, "Failed to list open orders", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, orders)
}

// handleCancelOrders is the operator's manual correction path; the
// engine itself never cancels anything.
func (s *Server) handleCancelOrders(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	symbol := r.FormValue("symbol")
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	if err := s.exchange.CancelAllOrders(r.Context(), symbol); err != nil {
		s.logger.Error("Failed to cancel orders", zap.String("symbol", symbol), zap.Error(err))
		http.Error(w, "Failed to cancel orders", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled", "symbol": symbol})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
