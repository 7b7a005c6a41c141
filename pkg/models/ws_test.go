package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDecodeTickerUpdate(t *testing.T) {
	raw := []byte(`{
		"channel": "ticker",
		"market": "BTC-PERP",
		"type": "update",
		"data": {"bid": 68000.5, "ask": 68001.0, "bidSize": 12.5, "askSize": 3.2, "last": 68000.75, "time": 1643406300.1234}
	}`)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))

	assert.Equal(t, ResponseTypeUpdate, ev.Type)
	assert.Equal(t, ChannelTicker, ev.Channel)
	assert.Equal(t, "BTC-PERP", ev.Market)
	require.NotNil(t, ev.Ticker)
	assert.Nil(t, ev.Fill)
	assert.Nil(t, ev.Order)
	assert.Equal(t, 68000.5, ev.Ticker.Bid)
	assert.Equal(t, 68001.0, ev.Ticker.Ask)
	assert.Equal(t, 68000.75, ev.Ticker.Last)
}

func TestEventDecodeFillUpdate(t *testing.T) {
	raw := []byte(`{
		"channel": "fills",
		"type": "update",
		"data": {
			"fee": 78.05799225,
			"feeRate": 0.0014,
			"future": "BTC-PERP",
			"id": 7828307,
			"liquidity": "taker",
			"market": "BTC-PERP",
			"orderId": 38065410,
			"tradeId": 19129310,
			"price": 3723.75,
			"side": "buy",
			"size": 14.973,
			"time": "2019-05-07T16:40:58.358438+00:00",
			"type": "order"
		}
	}`)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))

	require.NotNil(t, ev.Fill)
	assert.Equal(t, int64(7828307), ev.Fill.ID)
	assert.Equal(t, int64(38065410), ev.Fill.OrderID)
	assert.Equal(t, SideBuy, ev.Fill.Side)
	assert.Equal(t, 3723.75, ev.Fill.Price)
}

func TestEventDecodeOrderUpdate(t *testing.T) {
	raw := []byte(`{
		"channel": "orders",
		"type": "update",
		"data": {
			"id": 24852229,
			"clientId": "1643406300123",
			"market": "BTC-PERP",
			"type": "limit",
			"side": "buy",
			"size": 0.001,
			"price": 10000,
			"reduceOnly": false,
			"ioc": false,
			"postOnly": false,
			"status": "closed",
			"filledSize": 0.001,
			"remainingSize": 0,
			"avgFillPrice": 10000
		}
	}`)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))

	require.NotNil(t, ev.Order)
	assert.Equal(t, int64(24852229), ev.Order.ID)
	assert.Equal(t, "1643406300123", ev.Order.ClientID)
	assert.Equal(t, OrderTypeLimit, ev.Order.Type)
	assert.Equal(t, OrderStatusClosed, ev.Order.Status)
	assert.Equal(t, 0.001, ev.Order.FilledSize)
}

func TestEventDecodeControlFrameHasNoPayload(t *testing.T) {
	raw := []byte(`{"type": "subscribed", "channel": "ticker", "market": "BTC-PERP"}`)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))

	assert.Equal(t, ResponseTypeSubscribed, ev.Type)
	assert.False(t, ev.Type.HasData())
	assert.Nil(t, ev.Ticker)
}

func TestEventDecodeErrorFrame(t *testing.T) {
	raw := []byte(`{"type": "error", "code": 400, "msg": "Already logged in"}`)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))

	assert.Equal(t, ResponseTypeError, ev.Type)
	assert.Equal(t, 400, ev.Code)
	assert.Equal(t, "Already logged in", ev.Msg)
}

func TestIsAPIError(t *testing.T) {
	code, msg, ok := IsAPIError([]byte(`{"error": "bad op", "code": 400, "msg": "Invalid request"}`))
	require.True(t, ok)
	assert.Equal(t, 400, code)
	assert.Equal(t, "Invalid request", msg)

	_, _, ok = IsAPIError([]byte(`{"type": "update", "channel": "ticker", "data": {}}`))
	assert.False(t, ok)

	_, _, ok = IsAPIError([]byte(`not json`))
	assert.False(t, ok)
}

func TestSubscribeAndLoginFrames(t *testing.T) {
	sub, err := json.Marshal(SubscribeRequest{Op: "subscribe", Channel: ChannelTicker, Market: "BTC-PERP"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"subscribe","channel":"ticker","market":"BTC-PERP"}`, string(sub))

	// Account channels omit market.
	sub, err = json.Marshal(SubscribeRequest{Op: "subscribe", Channel: ChannelFills})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"subscribe","channel":"fills"}`, string(sub))

	login, err := json.Marshal(LoginRequest{
		Op:   "login",
		Args: LoginArgs{Key: "key", SubAccount: "sub", Sign: "abc", Time: 1643406300000},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"login","args":{"key":"key","subaccount":"sub","sign":"abc","time":1643406300000}}`, string(login))
}
