package stream

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/ftx-connector/pkg/config"
	"github.com/veiloq/ftx-connector/pkg/logging"
	"github.com/veiloq/ftx-connector/pkg/models"
	"github.com/veiloq/ftx-connector/pkg/websocket"
)

func testCredentials() config.Credentials {
	return config.Credentials{Key: "test-key", Secret: "test-secret"}
}

func testClient(t *testing.T) (*Client, *websocket.MockExchange) {
	t.Helper()

	server := websocket.NewMockExchange()
	t.Cleanup(server.Close)

	client := NewClient(testCredentials(), Config{
		Endpoint:     server.URL(),
		PingInterval: time.Second,
		Logger:       logging.NewLogger(),
	})
	t.Cleanup(client.UnsubscribeAll)

	return client, server
}

func ignoreEvents(error, models.Event) bool { return true }

func TestComposeStreamName(t *testing.T) {
	assert.Equal(t, "btc/usd@ticker", ComposeStreamName("BTC/USD", models.ChannelTicker))
	assert.Equal(t, "eth-perp@orderbook", ComposeStreamName("ETH-PERP", models.ChannelOrderbook))
	assert.Equal(t, "fills", ComposeStreamName("", models.ChannelFills))
	assert.Equal(t, "orders", ComposeStreamName("", models.ChannelOrders))
}

func TestStartChannelSubscribesPublic(t *testing.T) {
	client, server := testClient(t)

	handle, err := client.StartChannel(context.Background(), "BTC/USD", models.ChannelTicker, ignoreEvents)
	require.NoError(t, err)
	assert.Equal(t, "btc/usd@ticker", handle.StreamName())

	require.Eventually(t, func() bool {
		return len(server.Received()) >= 1
	}, time.Second, 10*time.Millisecond)

	received := server.Received()
	assert.JSONEq(t, `{"op":"subscribe","channel":"ticker","market":"BTC/USD"}`, string(received[0]))
	assert.Equal(t, 0, server.LoginCount())
}

func TestStartChannelLogsInBeforePrivateSubscribe(t *testing.T) {
	client, server := testClient(t)

	_, err := client.StartChannel(context.Background(), "", models.ChannelFills, ignoreEvents)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(server.Received()) >= 2
	}, time.Second, 10*time.Millisecond)

	received := server.Received()

	var login models.LoginRequest
	require.NoError(t, json.Unmarshal(received[0], &login))
	assert.Equal(t, "login", login.Op)
	assert.Equal(t, "test-key", login.Args.Key)
	assert.Len(t, login.Args.Sign, 64)
	assert.Greater(t, login.Args.Time, int64(0))

	assert.JSONEq(t, `{"op":"subscribe","channel":"fills"}`, string(received[1]))
	assert.Equal(t, 1, server.LoginCount())
}

func TestStartChannelPrivateNeedsCredentials(t *testing.T) {
	server := websocket.NewMockExchange()
	defer server.Close()

	client := NewClient(config.Credentials{}, Config{
		Endpoint: server.URL(),
		Logger:   logging.NewLogger(),
	})

	_, err := client.StartChannel(context.Background(), "", models.ChannelOrders, ignoreEvents)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, 0, server.ConnectionCount())
}

func TestCallbackGetsTypedEvents(t *testing.T) {
	client, server := testClient(t)

	events := make(chan models.Event, 16)
	_, err := client.StartChannel(context.Background(), "BTC/USD", models.ChannelTicker,
		func(err error, event models.Event) bool {
			if err == nil {
				events <- event
			}
			return true
		})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	// The subscribe ack arrives first, then the data frame.
	server.Broadcast([]byte(`{"type":"update","channel":"ticker","market":"BTC/USD",` +
		`"data":{"bid":100.5,"ask":101.5,"bidSize":3,"askSize":4,"last":101,"time":1659000000}}`))

	deadline := time.After(time.Second)
	for {
		select {
		case event := <-events:
			if event.Type != models.ResponseTypeUpdate {
				continue
			}
			require.NotNil(t, event.Ticker)
			assert.Equal(t, 100.5, event.Ticker.Bid)
			assert.Equal(t, "BTC/USD", event.Market)
			return
		case <-deadline:
			t.Fatal("data event not delivered")
		}
	}
}

func TestErrorFramesCarryCodeAndMessage(t *testing.T) {
	client, server := testClient(t)

	events := make(chan models.Event, 16)
	_, err := client.StartChannel(context.Background(), "BTC/USD", models.ChannelTicker,
		func(err error, event models.Event) bool {
			if err == nil {
				events <- event
			}
			return true
		})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	server.Broadcast([]byte(`{"error":true,"code":400,"msg":"Already subscribed"}`))

	deadline := time.After(time.Second)
	for {
		select {
		case event := <-events:
			if event.Type != models.ResponseTypeError {
				continue
			}
			assert.Equal(t, 400, event.Code)
			assert.Equal(t, "Already subscribed", event.Msg)
			return
		case <-deadline:
			t.Fatal("error event not delivered")
		}
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	client, server := testClient(t)

	events := make(chan models.Event, 16)
	handle, err := client.StartChannel(context.Background(), "BTC/USD", models.ChannelTicker,
		func(err error, event models.Event) bool {
			if err == nil {
				events <- event
			}
			return true
		})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	server.Broadcast([]byte(`{not json`))
	server.Broadcast([]byte(`{"type":"update","channel":"ticker","market":"BTC/USD",` +
		`"data":{"bid":7,"ask":8,"bidSize":1,"askSize":1,"last":7.5,"time":1659000000}}`))

	deadline := time.After(time.Second)
	for {
		select {
		case event := <-events:
			if event.Ticker == nil {
				continue
			}
			assert.Equal(t, 7.0, event.Ticker.Bid)
			assert.False(t, handle.Stopped())
			return
		case <-deadline:
			t.Fatal("channel did not survive the malformed frame")
		}
	}
}

func TestFindStreamForgetsStoppedChannels(t *testing.T) {
	client, _ := testClient(t)

	handle, err := client.StartChannel(context.Background(), "BTC/USD", models.ChannelTicker, ignoreEvents)
	require.NoError(t, err)
	require.Same(t, handle, client.FindStream("btc/usd@ticker"))

	handle.Stop()
	assert.Nil(t, client.FindStream("btc/usd@ticker"))
}

func TestUnsubscribeStopsChannel(t *testing.T) {
	client, _ := testClient(t)

	handle, err := client.StartChannel(context.Background(), "BTC/USD", models.ChannelTicker, ignoreEvents)
	require.NoError(t, err)

	client.Unsubscribe("btc/usd@ticker")

	assert.True(t, handle.Stopped())
	assert.Nil(t, client.FindStream("btc/usd@ticker"))
}

func TestUnsubscribeAll(t *testing.T) {
	client, server := testClient(t)

	first, err := client.StartChannel(context.Background(), "BTC/USD", models.ChannelTicker, ignoreEvents)
	require.NoError(t, err)
	second, err := client.StartChannel(context.Background(), "", models.ChannelFills, ignoreEvents)
	require.NoError(t, err)

	client.UnsubscribeAll()

	assert.True(t, first.Stopped())
	assert.True(t, second.Stopped())
	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}
