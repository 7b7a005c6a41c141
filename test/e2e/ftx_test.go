package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veiloq/ftx-connector/pkg/config"
	"github.com/veiloq/ftx-connector/pkg/logging"
	"github.com/veiloq/ftx-connector/pkg/models"
	"github.com/veiloq/ftx-connector/pkg/rest"
	"github.com/veiloq/ftx-connector/pkg/stream"
)

// TestConnector_E2E exercises the connector against the real exchange.
//
// To run this test:
// FTX_API_KEY=your_api_key FTX_API_SECRET=your_api_secret go test -v ./test/e2e
func TestConnector_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	creds := config.Credentials{
		Key:        os.Getenv("FTX_API_KEY"),
		Secret:     os.Getenv("FTX_API_SECRET"),
		SubAccount: os.Getenv("FTX_SUBACCOUNT"),
	}
	if !creds.Valid() {
		t.Skip("FTX_API_KEY and FTX_API_SECRET not set")
	}

	logger := logging.NewLogger()
	logger.SetLevel(logging.DEBUG)

	client := rest.NewClient(creds, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	t.Run("Account", func(t *testing.T) {
		account, err := client.Account(ctx)
		require.NoError(t, err, "failed to get account")
		require.NotEmpty(t, account.Username)
	})

	t.Run("Market", func(t *testing.T) {
		market, err := client.Market(ctx, "BTC-PERP")
		require.NoError(t, err, "failed to get market")
		require.Equal(t, "BTC-PERP", market.Name)
		require.Greater(t, market.Last, float64(0))
	})

	t.Run("HistoricalCandles", func(t *testing.T) {
		now := time.Now()
		candles, err := client.HistoricalCandles(ctx, "BTC-PERP", 3600,
			now.Add(-24*time.Hour).Unix(), now.Unix())
		require.NoError(t, err, "failed to get candles")
		require.NotEmpty(t, candles, "no candles returned")
		for i := 1; i < len(candles); i++ {
			require.True(t, candles[i-1].StartTime.Before(candles[i].StartTime),
				"candles not in ascending order")
		}
	})

	t.Run("TickerStream", func(t *testing.T) {
		streams := stream.NewClient(creds, stream.Config{Logger: logger})
		manager := stream.NewManager(streams)
		manager.SetTimeout(15 * time.Second)
		defer manager.UnsubscribeAll()

		require.NoError(t, manager.SubscribeTickerStream(ctx, "BTC-PERP", false))

		ticker, ok := manager.ReadTickerData("BTC-PERP")
		require.True(t, ok, "no ticker data before timeout")
		require.Greater(t, ticker.Bid, float64(0))
		require.Greater(t, ticker.Ask, ticker.Bid)
	})

	t.Run("PrivateStreams", func(t *testing.T) {
		streams := stream.NewClient(creds, stream.Config{Logger: logger})
		manager := stream.NewManager(streams)
		manager.SetTimeout(5 * time.Second)
		defer manager.UnsubscribeAll()

		require.NoError(t, manager.SubscribeOrdersStream(ctx, false))
		require.NoError(t, manager.SubscribeFillsStream(ctx, false))

		// Nothing is trading, so the reads time out empty; the point is that
		// login and subscribe were accepted and the channels stay up.
		_, ok := manager.ReadOrderData(models.Order{ID: 1})
		require.False(t, ok)

		manager.PingAll()
	})
}
