package web

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
	"github.com/dkozlov/gate_rollover_bot/internal/usecase"
)

type Server struct {
	router   *http.ServeMux
	server   *http.Server
	exchange domain.Exchange
	executor *usecase.StrategyExecutor
	runRepo  domain.RunRepository
	logger   *zap.Logger
}

func NewServer(
	port int,
	exchange domain.Exchange,
	executor *usecase.StrategyExecutor,
	runRepo domain.RunRepository,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:   http.NewServeMux(),
		exchange: exchange,
		executor: executor,
		runRepo:  runRepo,
		logger:   logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Conversational wizard (one websocket = one conversation)
	s.router.HandleFunc("GET /ws", s.handleChat)

	// Run journal
	s.router.HandleFunc("GET /api/runs", s.handleListRuns)

	// Account
	s.router.HandleFunc("GET /api/balance", s.handleBalance)

	// Open orders / manual correction
	s.router.HandleFunc("GET /api/orders", s.handleOpenOrders)
	s.router.HandleFunc("POST /api/cancel-orders", s.handleCancelOrders)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
