package models

import (
	json "github.com/goccy/go-json"
)

// SubscribeRequest is the outbound frame that opens or closes a channel
// subscription. Market is omitted on account-scoped channels.
type SubscribeRequest struct {
	Op      string  `json:"op"`
	Channel Channel `json:"channel"`
	Market  string  `json:"market,omitempty"`
}

// LoginArgs is the signed credential block of a LoginRequest.
type LoginArgs struct {
	Key        string `json:"key"`
	SubAccount string `json:"subaccount"`
	Sign       string `json:"sign"`
	Time       int64  `json:"time"`
}

// LoginRequest authenticates the connection before a private-channel
// subscribe frame. Sign covers `<time>websocket_login`.
type LoginRequest struct {
	Op   string    `json:"op"`
	Args LoginArgs `json:"args"`
}

// PingRequest is the application-level keepalive frame.
type PingRequest struct {
	Op string `json:"op"`
}

// TickerData is the payload of ticker channel updates.
type TickerData struct {
	Bid     float64 `json:"bid"`
	Ask     float64 `json:"ask"`
	BidSize float64 `json:"bidSize"`
	AskSize float64 `json:"askSize"`
	Last    float64 `json:"last"`
	Time    float64 `json:"time"`
}

// FillData is the payload of fills channel updates.
type FillData struct {
	Fee     float64 `json:"fee"`
	FeeRate float64 `json:"feeRate"`
	Future  string  `json:"future"`
	ID      int64   `json:"id"`
	// Liquidity is "maker" or "taker".
	Liquidity string  `json:"liquidity"`
	Market    string  `json:"market"`
	OrderID   int64   `json:"orderId"`
	TradeID   int64   `json:"tradeId"`
	Price     float64 `json:"price"`
	Side      Side    `json:"side"`
	Size      float64 `json:"size"`
	Time      string  `json:"time"`
	Type      string  `json:"type"`
}

// OrderData is the payload of orders channel updates.
type OrderData struct {
	ID            int64       `json:"id"`
	ClientID      string      `json:"clientId"`
	Market        string      `json:"market"`
	Type          OrderType   `json:"type"`
	Side          Side        `json:"side"`
	Size          float64     `json:"size"`
	Price         float64     `json:"price"`
	ReduceOnly    bool        `json:"reduceOnly"`
	IOC           bool        `json:"ioc"`
	PostOnly      bool        `json:"postOnly"`
	Status        OrderStatus `json:"status"`
	FilledSize    float64     `json:"filledSize"`
	RemainingSize float64     `json:"remainingSize"`
	AvgFillPrice  float64     `json:"avgFillPrice"`
}

// Event is one inbound WebSocket frame. Type, Channel, Market, Code and Msg
// come from the frame header; exactly one of the payload pointers is set for
// partial/update frames, chosen by the channel discriminant.
type Event struct {
	Type    ResponseType `json:"type"`
	Channel Channel      `json:"channel"`
	Market  string       `json:"market"`
	Code    int          `json:"code"`
	Msg     string       `json:"msg"`

	Ticker *TickerData
	Fill   *FillData
	Order  *OrderData
}

// eventHeader is the frame without its polymorphic payload.
type eventHeader struct {
	Type    ResponseType    `json:"type"`
	Channel Channel         `json:"channel"`
	Market  string          `json:"market"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes the header, then dispatches the data payload on the
// channel discriminant. Channels without a modeled payload keep Data dropped
// rather than failing the frame.
func (e *Event) UnmarshalJSON(data []byte) error {
	var header eventHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}

	e.Type = header.Type
	e.Channel = header.Channel
	e.Market = header.Market
	e.Code = header.Code
	e.Msg = header.Msg
	e.Ticker = nil
	e.Fill = nil
	e.Order = nil

	if len(header.Data) == 0 {
		return nil
	}

	switch header.Channel {
	case ChannelTicker:
		var ticker TickerData
		if err := json.Unmarshal(header.Data, &ticker); err != nil {
			return err
		}
		e.Ticker = &ticker
	case ChannelFills:
		var fill FillData
		if err := json.Unmarshal(header.Data, &fill); err != nil {
			return err
		}
		e.Fill = &fill
	case ChannelOrders:
		var order OrderData
		if err := json.Unmarshal(header.Data, &order); err != nil {
			return err
		}
		e.Order = &order
	}

	return nil
}

// IsAPIError reports whether a raw inbound frame is the error shape the
// server emits outside the normal event envelope.
func IsAPIError(raw []byte) (code int, msg string, ok bool) {
	var probe struct {
		Error *json.RawMessage `json:"error"`
		Code  *int             `json:"code"`
		Msg   *string          `json:"msg"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return 0, "", false
	}
	if probe.Error == nil || probe.Code == nil || probe.Msg == nil {
		return 0, "", false
	}
	return *probe.Code, *probe.Msg, true
}
