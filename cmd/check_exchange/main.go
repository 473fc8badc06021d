package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dkozlov/gate_rollover_bot/internal/infrastructure/exchange"
)

// Smoke test for Gate.io connectivity: one public call (ticker) and one
// signed call (account balance). Usage: check_exchange [CONTRACT]
func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GATE_API_KEY")
	apiSecret := os.Getenv("GATE_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		fmt.Println("GATE_API_KEY and GATE_API_SECRET must be set")
		os.Exit(1)
	}

	symbol := "BTC_USDT"
	if len(os.Args) > 1 {
		symbol = os.Args[1]
	}

	fmt.Printf("Testing Gate.io Interaction...\n")
	fmt.Printf("Endpoint: %s\n", exchange.GateBaseURL)
	fmt.Printf("API Key: %s...\n", apiKey[:4])

	adapter := exchange.NewGateAdapter(apiKey, apiSecret, exchange.GateBaseURL, zap.NewNop())
	ctx := context.Background()

	// Public endpoint (ticker)
	price, err := adapter.GetTickerPrice(ctx, symbol)
	if err != nil {
		fmt.Printf("❌ Failed to get price: %v\n", err)
	} else {
		fmt.Printf("✅ Current Price (%s): %s\n", symbol, price.String())
	}

	// Private endpoint (account balance)
	total, err := adapter.GetAccountBalance(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get balance: %v\n", err)
	} else {
		fmt.Printf("✅ Account Balance: %s USDT\n", total.String())
	}
}
