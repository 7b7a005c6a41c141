// Package ftx-connector provides REST and WebSocket connectivity for the FTX
// cryptocurrency exchange.
//
// The library is split into a synchronous REST client for account, market,
// order and candle endpoints, and a stream layer that maintains WebSocket
// subscriptions and caches their events for blocking reads.
//
// Core Features:
//
//   - HMAC-SHA256 request signing for REST calls and WebSocket logins
//   - Account, market, position, order and historical-candle endpoints
//   - Automatic backward pagination of candle history
//   - Ticker, orders and fills streams with idempotent subscriptions
//   - Ping-based liveness detection on every stream channel
//   - Request rate limiting on the REST path
//
// # Errors
//
// REST calls distinguish three failure classes, all reachable through
// errors.Is / errors.As:
//
//   - rest.ErrMissingCredentials: the call needs an API key and secret that
//     were never supplied
//
//   - rest.ErrInvalidResolution: the candle resolution is not one the
//     exchange accepts
//
//   - rest.APIError: the exchange answered with success=false; carries the
//     server's error string verbatim
//
//   - rest.BadResponseError: the exchange answered with a non-2xx status;
//     carries the status code and raw body
//
// Stream channels never return errors after subscription: a transport
// failure stops the channel and is reported once through the subscription
// callback and the logger. Channels are not reconnected automatically; the
// owner re-subscribes with force=true when it wants the stream back.
//
// # REST Examples
//
// Creating a client and fetching account state:
//
//	creds := config.Credentials{Key: "your-api-key", Secret: "your-api-secret"}
//	client := rest.NewClient(creds, nil)
//
//	account, err := client.Account(ctx)
//	if err != nil {
//	    log.Fatalf("failed to get account: %v", err)
//	}
//	fmt.Printf("collateral: %.2f\n", account.Collateral)
//
// Placing and tracking an order:
//
//	order, err := client.PlaceOrder(ctx, models.Order{
//	    Market: "BTC-PERP",
//	    Side:   models.SideBuy,
//	    Type:   models.OrderTypeLimit,
//	    Size:   0.01,
//	    Price:  25000,
//	})
//	if err != nil {
//	    var apiErr *rest.APIError
//	    if errors.As(err, &apiErr) {
//	        log.Fatalf("rejected by exchange: %s", apiErr.Message)
//	    }
//	    log.Fatalf("failed to place order: %v", err)
//	}
//
//	status, err := client.OrderStatus(ctx, order.ID, false)
//
// Fetching a day of hourly candles (paginated transparently):
//
//	now := time.Now()
//	candles, err := client.HistoricalCandles(ctx, "BTC-PERP", 3600,
//	    now.Add(-24*time.Hour).Unix(), now.Unix())
//
// # Stream Examples
//
// Subscribing to a ticker and reading the latest value:
//
//	streams := stream.NewClient(creds, stream.DefaultConfig())
//	manager := stream.NewManager(streams)
//
//	if err := manager.SubscribeTickerStream(ctx, "BTC-PERP", false); err != nil {
//	    log.Fatalf("failed to subscribe: %v", err)
//	}
//
//	if ticker, ok := manager.ReadTickerData("BTC-PERP"); ok {
//	    fmt.Printf("bid %.2f ask %.2f\n", ticker.Bid, ticker.Ask)
//	}
//
// Waiting for the fill of an order through the private fills channel:
//
//	if err := manager.SubscribeFillsStream(ctx, false); err != nil {
//	    log.Fatalf("failed to subscribe: %v", err)
//	}
//
//	order, _ := client.PlaceOrder(ctx, models.Order{ /* ... */ })
//	if fill, ok := manager.ReadFillData(order); ok {
//	    fmt.Printf("filled %.4f at %.2f\n", fill.Size, fill.Price)
//	}
//
// Private channels must be kept alive by periodic pings:
//
//	go func() {
//	    for range time.Tick(15 * time.Second) {
//	        manager.PingAll()
//	    }
//	}()
package ftxconnector
