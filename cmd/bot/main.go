package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dkozlov/gate_rollover_bot/internal/infrastructure/exchange"
	"github.com/dkozlov/gate_rollover_bot/internal/infrastructure/logger"
	"github.com/dkozlov/gate_rollover_bot/internal/infrastructure/storage"
	"github.com/dkozlov/gate_rollover_bot/internal/usecase"
	"github.com/dkozlov/gate_rollover_bot/internal/web"
)

type Config struct {
	Exchange struct {
		RESTEndpoint string `yaml:"rest_endpoint"`
	} `yaml:"exchange"`
	Executor struct {
		PlacementPauseMs int    `yaml:"placement_pause_ms"`
		JournalFile      string `yaml:"journal_file"`
	} `yaml:"executor"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	// 1. Load Config
	// Credentials come from the environment (.env is optional).
	_ = godotenv.Load()

	cfg, err := loadConfig("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	apiKey := os.Getenv("GATE_API_KEY")
	apiSecret := os.Getenv("GATE_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		fmt.Println("GATE_API_KEY and GATE_API_SECRET must be set")
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "bot.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Exchange (Gate.io)
	endpoint := cfg.Exchange.RESTEndpoint
	if endpoint == "" {
		endpoint = exchange.GateBaseURL
	}
	gateAdapter := exchange.NewGateAdapter(apiKey, apiSecret, endpoint, log)

	// 5. Init Executor
	// Order placements go to a dedicated journal file so they survive
	// terminal scrollback.
	journalFile := cfg.Executor.JournalFile
	if journalFile == "" {
		journalFile = "executions.log"
	}
	execLogger, err := logger.NewFileLogger(journalFile, cfg.Logging.Level)
	if err != nil {
		log.Error("Failed to init execution journal, using default logger", zap.Error(err))
		execLogger = log
	}
	executor := usecase.NewStrategyExecutor(gateAdapter, execLogger)
	if cfg.Executor.PlacementPauseMs > 0 {
		executor.SetPlacementPause(time.Duration(cfg.Executor.PlacementPauseMs) * time.Millisecond)
	}

	// 6. Init Web Server
	port := cfg.Server.Port
	if port == 0 {
		port = 8080 // Default
	}
	server := web.NewServer(port, gateAdapter, executor, store, log)

	// 7. Start Server
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 8. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}
