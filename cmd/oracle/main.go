// cmd/oracle/main.go

// The oracle command reads a commodity price feed from a JSON file and
// pushes every quote on chain through the oracle service. It is meant to
// run on a schedule next to the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/desoy/desoy-backend/internal/config"
	"github.com/desoy/desoy-backend/internal/database"
	"github.com/desoy/desoy-backend/internal/services"
)

func main() {
	file := flag.String("file", "prices.json", "path to the price feed JSON file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall push timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	quotes, err := readFeed(*file)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read price feed")
	}
	if len(quotes) == 0 {
		logrus.Fatal("Price feed is empty")
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	solanaService, err := services.NewSolanaService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize chain client")
	}

	oracleService := services.NewOracleService(db, cfg, solanaService)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pushed, err := oracleService.PushPrices(ctx, quotes)
	for _, price := range pushed {
		logrus.WithFields(logrus.Fields{
			"commodity":    price.Commodity,
			"price_cents":  price.PriceCents,
			"tx_signature": price.TxSignature,
		}).Info("Price pushed")
	}

	if err != nil {
		logrus.WithError(err).Fatalf("Pushed %d of %d prices", len(pushed), len(quotes))
	}
	logrus.Infof("Pushed %d prices", len(pushed))
}

// readFeed accepts the feed either as the wrapped form the price scripts
// produce, {"prices": [{"asset": ..., "priceInCents": ...}]}, or as a bare
// array of quotes.
func readFeed(path string) ([]services.PriceQuote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Prices []services.PriceQuote `json:"prices"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Prices != nil {
		return wrapped.Prices, nil
	}

	var quotes []services.PriceQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}
