package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veiloq/ftx-connector/pkg/config"
	"github.com/veiloq/ftx-connector/pkg/logging"
	"github.com/veiloq/ftx-connector/pkg/rest"
	"github.com/veiloq/ftx-connector/pkg/stream"
)

func main() {
	configPath := flag.String("config", "connector.yaml", "path to the YAML configuration file")
	pair := flag.String("pair", "BTC-PERP", "market to query and stream")
	flag.Parse()

	logger := logging.NewZapLogger(logging.WithDevelopmentMode())

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", logging.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// REST side: account snapshot and a day of hourly candles.
	client := rest.NewClient(cfg.Credentials, &rest.SessionConfig{
		Endpoint: cfg.RESTEndpoint,
		Timeout:  cfg.ReadTimeout,
		Logger:   logger,
	})

	account, err := client.Account(ctx)
	if err != nil {
		logger.Error("failed to get account", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("account",
		logging.String("username", account.Username),
		logging.Float64("total_account_value", account.TotalAccountValue),
		logging.Float64("margin_fraction", account.MarginFraction),
	)

	market, err := client.Market(ctx, *pair)
	if err != nil {
		logger.Error("failed to get market", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("market",
		logging.String("name", market.Name),
		logging.Float64("bid", market.Bid),
		logging.Float64("ask", market.Ask),
		logging.Float64("last", market.Last),
	)

	now := time.Now()
	candles, err := client.HistoricalCandles(ctx, *pair, 3600, now.Add(-24*time.Hour).Unix(), now.Unix())
	if err != nil {
		logger.Error("failed to get candles", logging.Error(err))
		os.Exit(1)
	}
	for _, candle := range candles {
		logger.Info("candle",
			logging.String("time", candle.StartTime.Format(time.RFC3339)),
			logging.Float64("open", candle.Open),
			logging.Float64("close", candle.Close),
			logging.Float64("volume", candle.Volume),
		)
	}

	// Stream side: live ticker plus the private fills and orders channels.
	streams := stream.NewClient(cfg.Credentials, stream.Config{
		Endpoint:     cfg.WSEndpoint,
		PingInterval: cfg.PingInterval,
		Logger:       logger,
	})
	manager := stream.NewManager(streams)
	manager.SetTimeout(cfg.ReadTimeout)
	defer manager.UnsubscribeAll()

	if err := manager.SubscribeTickerStream(ctx, *pair, false); err != nil {
		logger.Error("failed to subscribe to ticker", logging.Error(err))
		os.Exit(1)
	}
	if err := manager.SubscribeOrdersStream(ctx, false); err != nil {
		logger.Error("failed to subscribe to orders", logging.Error(err))
		os.Exit(1)
	}
	if err := manager.SubscribeFillsStream(ctx, false); err != nil {
		logger.Error("failed to subscribe to fills", logging.Error(err))
		os.Exit(1)
	}

	if ticker, ok := manager.ReadTickerData(*pair); ok {
		logger.Info("ticker",
			logging.String("pair", *pair),
			logging.Float64("bid", ticker.Bid),
			logging.Float64("ask", ticker.Ask),
			logging.Float64("last", ticker.Last),
		)
	} else {
		logger.Warn("no ticker data before timeout", logging.String("pair", *pair))
	}

	// Keep private channels alive until interrupted.
	pingTicker := time.NewTicker(cfg.PingInterval)
	defer pingTicker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("streaming... press Ctrl+C to exit")
	for {
		select {
		case <-pingTicker.C:
			manager.PingAll()
		case <-sigChan:
			logger.Info("shutting down")
			return
		}
	}
}
