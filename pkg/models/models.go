// Package models defines the wire types of the FTX REST and WebSocket APIs:
// the REST response envelope, account/market/position/order/candle payloads,
// and the frames exchanged over the streaming connection.
package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// Response is the envelope every REST endpoint wraps its payload in.
// Result stays raw until the caller knows the concrete type.
type Response struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Account mirrors GET /api/account.
type Account struct {
	BackstopProvider             bool       `json:"backstopProvider"`
	Collateral                   float64    `json:"collateral"`
	FreeCollateral               float64    `json:"freeCollateral"`
	InitialMarginRequirement     float64    `json:"initialMarginRequirement"`
	Leverage                     float64    `json:"leverage"`
	Liquidating                  bool       `json:"liquidating"`
	MaintenanceMarginRequirement float64    `json:"maintenanceMarginRequirement"`
	MakerFee                     float64    `json:"makerFee"`
	MarginFraction               float64    `json:"marginFraction"`
	OpenMarginFraction           float64    `json:"openMarginFraction"`
	TakerFee                     float64    `json:"takerFee"`
	TotalAccountValue            float64    `json:"totalAccountValue"`
	TotalPositionSize            float64    `json:"totalPositionSize"`
	Username                     string     `json:"username"`
	Positions                    []Position `json:"positions"`
}

// Position mirrors one entry of GET /api/positions. Future is the market
// name, e.g. BTC-PERP.
type Position struct {
	Cost                         float64 `json:"cost"`
	EntryPrice                   float64 `json:"entryPrice"`
	Future                       string  `json:"future"`
	InitialMarginRequirement     float64 `json:"initialMarginRequirement"`
	LongOrderSize                float64 `json:"longOrderSize"`
	MaintenanceMarginRequirement float64 `json:"maintenanceMarginRequirement"`
	NetSize                      float64 `json:"netSize"`
	OpenSize                     float64 `json:"openSize"`
	RealizedPnl                  float64 `json:"realizedPnl"`
	ShortOrderSize               float64 `json:"shortOrderSize"`
	Side                         Side    `json:"side"`
	Size                         float64 `json:"size"`
	UnrealizedPnl                float64 `json:"unrealizedPnl"`
	CumulativeBuySize            float64 `json:"cumulativeBuySize"`
	CumulativeSellSize           float64 `json:"cumulativeSellSize"`
	EstimatedLiquidationPrice    float64 `json:"estimatedLiquidationPrice"`
	RecentAverageOpenPrice       float64 `json:"recentAverageOpenPrice"`
	RecentBreakEvenPrice         float64 `json:"recentBreakEvenPrice"`
	RecentPnl                    float64 `json:"recentPnl"`
	CollateralUsed               float64 `json:"collateralUsed"`
}

// Market mirrors GET /api/markets/<name>.
type Market struct {
	Name                  string     `json:"name"`
	BaseCurrency          string     `json:"baseCurrency"`
	QuoteCurrency         string     `json:"quoteCurrency"`
	QuoteVolume24h        float64    `json:"quoteVolume24h"`
	Change1h              float64    `json:"change1h"`
	Change24h             float64    `json:"change24h"`
	ChangeBod             float64    `json:"changeBod"`
	HighLeverageFeeExempt bool       `json:"highLeverageFeeExempt"`
	MinProvideSize        float64    `json:"minProvideSize"`
	Type                  MarketType `json:"type"`
	Underlying            string     `json:"underlying"`
	Enabled               bool       `json:"enabled"`
	Ask                   float64    `json:"ask"`
	Bid                   float64    `json:"bid"`
	Last                  float64    `json:"last"`
	PostOnly              bool       `json:"postOnly"`
	Price                 float64    `json:"price"`
	PriceIncrement        float64    `json:"priceIncrement"`
	SizeIncrement         float64    `json:"sizeIncrement"`
	Restricted            bool       `json:"restricted"`
	VolumeUsd24h          float64    `json:"volumeUsd24h"`
}

// Order doubles as the place-order request and the acknowledgement the
// server fills in (Id, CreatedAt, status and fill figures). ClientID is
// assigned locally before send; both ids correlate later stream events.
type Order struct {
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
	FilledSize    float64     `json:"filledSize,omitempty"`
	Future        string      `json:"future,omitempty"`
	ID            int64       `json:"id,omitempty"`
	Market        string      `json:"market"`
	Price         float64     `json:"price"`
	AvgFillPrice  float64     `json:"avgFillPrice,omitempty"`
	RemainingSize float64     `json:"remainingSize,omitempty"`
	Side          Side        `json:"side"`
	Size          float64     `json:"size"`
	Status        OrderStatus `json:"status,omitempty"`
	Type          OrderType   `json:"type"`
	ReduceOnly    bool        `json:"reduceOnly"`
	IOC           bool        `json:"ioc"`
	PostOnly      bool        `json:"postOnly"`
	ClientID      string      `json:"clientId,omitempty"`
	TriggerPrice  float64     `json:"triggerPrice,omitempty"`
	TrailValue    float64     `json:"trailValue,omitempty"`
}

// Candle is one OHLCV bar. StartTime is the bar open in exchange time;
// bars arrive ascending by StartTime.
type Candle struct {
	StartTime time.Time `json:"startTime"`
	Time      float64   `json:"time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}
