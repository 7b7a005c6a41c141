package models

import (
	"bytes"
	"errors"
	"strconv"
)

// Side is the order direction.
type Side uint8

const (
	SideSell Side = iota
	SideBuy

	sideSellStr = "sell"
	sideBuyStr  = "buy"
)

var (
	sideSellByte = []byte(`"sell"`)
	sideBuyByte  = []byte(`"buy"`)
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return sideSellStr
	case SideBuy:
		return sideBuyStr
	}
	panic("invalid side string conversion " + strconv.Itoa(int(s)))
}

func (s Side) MarshalJSON() ([]byte, error) {
	switch s {
	case SideSell:
		return sideSellByte, nil
	case SideBuy:
		return sideBuyByte, nil
	}
	return nil, errors.New("invalid side json conversion: " + strconv.Itoa(int(s)))
}

func (s *Side) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, sideSellByte) {
		*s = SideSell
		return nil
	}

	if bytes.Equal(data, sideBuyByte) {
		*s = SideBuy
		return nil
	}

	return errors.New("invalid side json value: " + string(data))
}

// OrderType enumerates the order kinds accepted by the orders endpoint.
type OrderType uint8

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStop
	OrderTypeTrailingStop
	OrderTypeTakeProfit
)

var orderTypeNames = []string{"market", "limit", "stop", "trailingStop", "takeProfit"}

func (ot OrderType) String() string {
	if int(ot) < len(orderTypeNames) {
		return orderTypeNames[ot]
	}
	panic("invalid order type string conversion " + strconv.Itoa(int(ot)))
}

func (ot OrderType) MarshalJSON() ([]byte, error) {
	if int(ot) >= len(orderTypeNames) {
		return nil, errors.New("invalid order type json conversion: " + strconv.Itoa(int(ot)))
	}
	return strconv.AppendQuote(nil, orderTypeNames[ot]), nil
}

func (ot *OrderType) UnmarshalJSON(data []byte) error {
	for i, name := range orderTypeNames {
		if bytes.Equal(data, strconv.AppendQuote(nil, name)) {
			*ot = OrderType(i)
			return nil
		}
	}
	return errors.New("invalid order type json value: " + string(data))
}

// OrderStatus tracks an order through its exchange lifecycle.
type OrderStatus uint8

const (
	OrderStatusNew OrderStatus = iota
	OrderStatusOpen
	OrderStatusClosed
)

var orderStatusNames = []string{"new", "open", "closed"}

func (os OrderStatus) String() string {
	if int(os) < len(orderStatusNames) {
		return orderStatusNames[os]
	}
	panic("invalid order status string conversion " + strconv.Itoa(int(os)))
}

func (os OrderStatus) MarshalJSON() ([]byte, error) {
	if int(os) >= len(orderStatusNames) {
		return nil, errors.New("invalid order status json conversion: " + strconv.Itoa(int(os)))
	}
	return strconv.AppendQuote(nil, orderStatusNames[os]), nil
}

func (os *OrderStatus) UnmarshalJSON(data []byte) error {
	for i, name := range orderStatusNames {
		if bytes.Equal(data, strconv.AppendQuote(nil, name)) {
			*os = OrderStatus(i)
			return nil
		}
	}
	return errors.New("invalid order status json value: " + string(data))
}

// MarketType distinguishes spot and futures markets.
type MarketType uint8

const (
	MarketTypeSpot MarketType = iota
	MarketTypeFuture
)

var marketTypeNames = []string{"spot", "future"}

func (mt MarketType) String() string {
	if int(mt) < len(marketTypeNames) {
		return marketTypeNames[mt]
	}
	panic("invalid market type string conversion " + strconv.Itoa(int(mt)))
}

func (mt MarketType) MarshalJSON() ([]byte, error) {
	if int(mt) >= len(marketTypeNames) {
		return nil, errors.New("invalid market type json conversion: " + strconv.Itoa(int(mt)))
	}
	return strconv.AppendQuote(nil, marketTypeNames[mt]), nil
}

func (mt *MarketType) UnmarshalJSON(data []byte) error {
	for i, name := range marketTypeNames {
		if bytes.Equal(data, strconv.AppendQuote(nil, name)) {
			*mt = MarketType(i)
			return nil
		}
	}
	return errors.New("invalid market type json value: " + string(data))
}

// Channel names a WebSocket subscription channel. Channels are protocol
// strings, used verbatim in subscribe frames and as part of stream names.
type Channel string

const (
	ChannelOrderbook Channel = "orderbook"
	ChannelTrades    Channel = "trades"
	ChannelFills     Channel = "fills"
	ChannelOrders    Channel = "orders"
	ChannelTicker    Channel = "ticker"
	ChannelMarkets   Channel = "markets"
	ChannelFTXPay    Channel = "ftxpay"
)

// Private reports whether the channel requires a login frame before the
// subscribe frame is accepted.
func (c Channel) Private() bool {
	return c == ChannelOrders || c == ChannelFills || c == ChannelFTXPay
}

// ResponseType is the `type` discriminant on every inbound WebSocket frame.
type ResponseType string

const (
	ResponseTypeError        ResponseType = "error"
	ResponseTypeSubscribed   ResponseType = "subscribed"
	ResponseTypeUnsubscribed ResponseType = "unsubscribed"
	ResponseTypeInfo         ResponseType = "info"
	ResponseTypePartial      ResponseType = "partial"
	ResponseTypeUpdate       ResponseType = "update"
	ResponseTypePong         ResponseType = "pong"
)

// HasData reports whether frames of this type carry a channel payload.
func (rt ResponseType) HasData() bool {
	return rt == ResponseTypePartial || rt == ResponseTypeUpdate
}
