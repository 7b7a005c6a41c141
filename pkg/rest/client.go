package rest

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/veiloq/ftx-connector/pkg/config"
	"github.com/veiloq/ftx-connector/pkg/models"
)

// Client composes signed REST calls for the account, market, order and
// candle endpoints. Calls are synchronous and stateless; the only mutable
// state is the client-order-id counter.
type Client struct {
	session *Session

	// lastClientID is seeded from the wall clock at construction so ids
	// stay unique across restarts within one trading session.
	lastClientID atomic.Int64
}

// NewClient creates a REST client. A nil cfg uses DefaultSessionConfig.
func NewClient(creds config.Credentials, cfg *SessionConfig) *Client {
	c := &Client{
		session: NewSession(creds, cfg),
	}
	c.lastClientID.Store(time.Now().UnixMilli())
	return c
}

// SetCredentials replaces the API credentials (re-login).
func (c *Client) SetCredentials(creds config.Credentials) {
	c.session.SetCredentials(creds)
}

// handleResponse checks the HTTP status, parses the response envelope and
// decodes result into T. An envelope with success=false becomes an APIError
// carrying the server message.
func handleResponse[T any](status int, body []byte) (T, error) {
	var result T

	if status < 200 || status > 299 {
		return result, &BadResponseError{Status: status, Body: string(body)}
	}

	var envelope models.Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return result, err
	}
	if !envelope.Success {
		return result, &APIError{Message: envelope.Error}
	}

	if len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, &result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// handleAck is handleResponse for endpoints whose result payload carries no
// information beyond the envelope's success flag.
func handleAck(status int, body []byte) error {
	_, err := handleResponse[json.RawMessage](status, body)
	return err
}

// Account fetches the account snapshot.
func (c *Client) Account(ctx context.Context) (models.Account, error) {
	status, body, err := c.session.Get(ctx, "account")
	if err != nil {
		return models.Account{}, err
	}
	return handleResponse[models.Account](status, body)
}

// Market fetches a single market, e.g. BTC-PERP.
func (c *Client) Market(ctx context.Context, name string) (models.Market, error) {
	status, body, err := c.session.Get(ctx, "markets/"+name)
	if err != nil {
		return models.Market{}, err
	}
	return handleResponse[models.Market](status, body)
}

// Markets fetches the full market list.
func (c *Client) Markets(ctx context.Context) ([]models.Market, error) {
	status, body, err := c.session.Get(ctx, "markets")
	if err != nil {
		return nil, err
	}
	return handleResponse[[]models.Market](status, body)
}

// Positions fetches all open positions.
func (c *Client) Positions(ctx context.Context) ([]models.Position, error) {
	status, body, err := c.session.Get(ctx, "positions")
	if err != nil {
		return nil, err
	}
	return handleResponse[[]models.Position](status, body)
}

// Position fetches the position for one market. The API has no
// single-position endpoint, so this scans the positions list; an unknown
// market yields a zero Position and no error.
func (c *Client) Position(ctx context.Context, name string) (models.Position, error) {
	positions, err := c.Positions(ctx)
	if err != nil {
		return models.Position{}, err
	}

	for _, position := range positions {
		if position.Future == name {
			return position, nil
		}
	}

	return models.Position{}, nil
}

// placeOrderRequest is the subset of Order fields the orders endpoint
// accepts. Trigger parameters are only sent for the order types that use
// them.
type placeOrderRequest struct {
	Market       string           `json:"market"`
	Side         models.Side      `json:"side"`
	Price        float64          `json:"price"`
	Type         models.OrderType `json:"type"`
	Size         float64          `json:"size"`
	ReduceOnly   bool             `json:"reduceOnly"`
	IOC          bool             `json:"ioc"`
	PostOnly     bool             `json:"postOnly"`
	ClientID     string           `json:"clientId"`
	TriggerPrice *float64         `json:"triggerPrice,omitempty"`
	TrailValue   *float64         `json:"trailValue,omitempty"`
}

// PlaceOrder submits an order and returns the server acknowledgement.
// When order.ClientID is empty a fresh id from the monotonic generator is
// assigned, so the ack and later stream events can be correlated.
func (c *Client) PlaceOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if order.ClientID == "" {
		order.ClientID = c.nextClientID()
	}

	req := placeOrderRequest{
		Market:     order.Market,
		Side:       order.Side,
		Price:      order.Price,
		Type:       order.Type,
		Size:       order.Size,
		ReduceOnly: order.ReduceOnly,
		IOC:        order.IOC,
		PostOnly:   order.PostOnly,
		ClientID:   order.ClientID,
	}

	switch order.Type {
	case models.OrderTypeStop, models.OrderTypeTakeProfit:
		req.TriggerPrice = &order.TriggerPrice
	case models.OrderTypeTrailingStop:
		req.TrailValue = &order.TrailValue
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return models.Order{}, err
	}

	status, body, err := c.session.Post(ctx, "orders", payload)
	if err != nil {
		return models.Order{}, err
	}

	ack, err := handleResponse[models.Order](status, body)
	if err != nil {
		return models.Order{}, err
	}
	if ack.ClientID == "" {
		ack.ClientID = order.ClientID
	}
	return ack, nil
}

// CancelOrder cancels by server id, or by client id when byClientID is set.
func (c *Client) CancelOrder(ctx context.Context, id int64, byClientID bool) error {
	status, body, err := c.session.Delete(ctx, orderPath(id, byClientID), nil)
	if err != nil {
		return err
	}
	return handleAck(status, body)
}

// OrderStatus fetches the current state of one order by server or client id.
func (c *Client) OrderStatus(ctx context.Context, id int64, byClientID bool) (models.Order, error) {
	status, body, err := c.session.Get(ctx, orderPath(id, byClientID))
	if err != nil {
		return models.Order{}, err
	}
	return handleResponse[models.Order](status, body)
}

// CancelAllOrders cancels every open order, limited to one market when
// market is non-empty.
func (c *Client) CancelAllOrders(ctx context.Context, market string) error {
	var payload []byte
	if market != "" {
		var err error
		payload, err = json.Marshal(map[string]string{"market": market})
		if err != nil {
			return err
		}
	}

	status, body, err := c.session.Delete(ctx, "orders", payload)
	if err != nil {
		return err
	}
	return handleAck(status, body)
}

func orderPath(id int64, byClientID bool) string {
	if byClientID {
		return "orders/by_client_id/" + strconv.FormatInt(id, 10)
	}
	return "orders/" + strconv.FormatInt(id, 10)
}

// ValidResolution reports whether a candle resolution in seconds is one the
// exchange accepts: 15, 60, 300, 900, 3600, 14400, 86400, or a multiple of
// 86400 up to 30 days.
func ValidResolution(resolution int64) bool {
	const day = 86400

	if resolution > day {
		return resolution%day == 0 && resolution <= 30*day
	}

	switch resolution {
	case 15, 60, 300, 900, 3600, 14400, day:
		return true
	}
	return false
}

// candlePage fetches one page of candles for [from, to].
func (c *Client) candlePage(ctx context.Context, market string, resolution, from, to int64) ([]models.Candle, error) {
	target := "markets/" + market + "/candles" +
		"?resolution=" + strconv.FormatInt(resolution, 10) +
		"&start_time=" + strconv.FormatInt(from, 10) +
		"&end_time=" + strconv.FormatInt(to, 10)

	status, body, err := c.session.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return handleResponse[[]models.Candle](status, body)
}

// HistoricalCandles downloads the candle range [from, to] (epoch seconds),
// ascending by start time. The endpoint serves at most one page per call,
// so the range is walked backwards: each page is prepended and the window
// end moves to just before the earliest candle seen, until the window is
// exhausted or a page comes back empty. A from at or past to returns no
// candles without issuing a request.
func (c *Client) HistoricalCandles(ctx context.Context, market string, resolution, from, to int64) ([]models.Candle, error) {
	if !ValidResolution(resolution) {
		return nil, ErrInvalidResolution
	}

	var candles []models.Candle
	lastTo := to

	for from < lastTo {
		page, err := c.candlePage(ctx, market, resolution, from, lastTo)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		merged := make([]models.Candle, 0, len(page)+len(candles))
		merged = append(merged, page...)
		merged = append(merged, candles...)
		candles = merged

		lastTo = page[0].StartTime.Unix() - resolution
	}

	return candles, nil
}

func (c *Client) nextClientID() string {
	return strconv.FormatInt(c.lastClientID.Add(1), 10)
}
