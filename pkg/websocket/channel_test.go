package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url, stream string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.StreamName = stream
	cfg.DialAttempts = 2
	cfg.DialDelay = 10 * time.Millisecond
	return cfg
}

func keepStreaming(error, []byte) bool { return true }

func TestStartWritesInitialFramesInOrder(t *testing.T) {
	server := NewMockExchange()
	defer server.Close()

	login := []byte(`{"op":"login","args":{"key":"k","sign":"s","time":1}}`)
	subscribe := []byte(`{"op":"subscribe","channel":"fills"}`)

	channel, err := Start(context.Background(), testConfig(server.URL(), "fills"),
		[][]byte{login, subscribe}, keepStreaming)
	require.NoError(t, err)
	defer channel.Stop()

	require.Eventually(t, func() bool {
		return len(server.Received()) >= 2
	}, time.Second, 10*time.Millisecond)

	received := server.Received()
	assert.JSONEq(t, string(login), string(received[0]))
	assert.JSONEq(t, string(subscribe), string(received[1]))
	assert.Equal(t, 1, server.LoginCount())
}

func TestFramesReachCallback(t *testing.T) {
	server := NewMockExchange()
	defer server.Close()

	frames := make(chan []byte, 16)
	channel, err := Start(context.Background(), testConfig(server.URL(), "btcusd@ticker"), nil,
		func(err error, raw []byte) bool {
			if err == nil {
				frames <- raw
			}
			return true
		})
	require.NoError(t, err)
	defer channel.Stop()

	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	server.Broadcast([]byte(`{"type":"update","channel":"ticker","market":"BTC/USD"}`))

	select {
	case raw := <-frames:
		assert.Contains(t, string(raw), `"channel":"ticker"`)
	case <-time.After(time.Second):
		t.Fatal("frame not delivered")
	}

	assert.Equal(t, "btcusd@ticker", channel.StreamName())
}

func TestCallbackFalseStopsChannel(t *testing.T) {
	server := NewMockExchange()
	defer server.Close()

	channel, err := Start(context.Background(), testConfig(server.URL(), "trades"), nil,
		func(err error, raw []byte) bool { return false })
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	server.Broadcast([]byte(`{"type":"update","channel":"trades"}`))

	require.Eventually(t, channel.Stopped, time.Second, 10*time.Millisecond)

	select {
	case <-channel.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	server := NewMockExchange()
	defer server.Close()

	channel, err := Start(context.Background(), testConfig(server.URL(), "trades"), nil, keepStreaming)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			channel.Stop()
		}()
	}
	wg.Wait()

	assert.True(t, channel.Stopped())
	assert.Error(t, channel.Send([]byte(`{"op":"ping"}`)))
}

func TestPeerFailureDeliversErrorOnce(t *testing.T) {
	server := NewMockExchange()
	defer server.Close()

	var mu sync.Mutex
	var errs []error
	channel, err := Start(context.Background(), testConfig(server.URL(), "trades"), nil,
		func(err error, raw []byte) bool {
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return true
		})
	require.NoError(t, err)
	defer channel.Stop()

	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	server.DropConnections()

	require.Eventually(t, channel.Stopped, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
}

func TestUnansweredPingStopsChannel(t *testing.T) {
	server := NewMockExchange()
	server.SuppressPongs = true
	defer server.Close()

	cfg := testConfig(server.URL(), "trades")
	cfg.PingInterval = 30 * time.Millisecond

	channel, err := Start(context.Background(), cfg, nil, keepStreaming)
	require.NoError(t, err)
	defer channel.Stop()

	require.Eventually(t, channel.Stopped, 2*time.Second, 10*time.Millisecond)
}

func TestAnsweredPingsKeepChannelAlive(t *testing.T) {
	server := NewMockExchange()
	defer server.Close()

	cfg := testConfig(server.URL(), "trades")
	cfg.PingInterval = 20 * time.Millisecond

	channel, err := Start(context.Background(), cfg, nil, keepStreaming)
	require.NoError(t, err)
	defer channel.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.False(t, channel.Stopped())
}

func TestRejectedConnectionExhaustsDialRetries(t *testing.T) {
	server := NewMockExchange()
	server.SetRejectConnections(true)
	defer server.Close()

	_, err := Start(context.Background(), testConfig(server.URL(), "trades"), nil, keepStreaming)
	require.Error(t, err)
}
