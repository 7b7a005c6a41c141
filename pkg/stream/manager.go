package stream

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/veiloq/ftx-connector/pkg/config"
	"github.com/veiloq/ftx-connector/pkg/logging"
	"github.com/veiloq/ftx-connector/pkg/models"
)

const (
	tickerPollInterval = 10 * time.Millisecond
	listPollInterval   = 3 * time.Millisecond
)

// Manager is the cache layer over the stream Client. Subscriptions feed
// per-kind caches from the channel read goroutines; callers consume them
// through blocking reads that poll until data arrives or the shared timeout
// expires.
//
// A channel that stops, for any reason, is not reconnected. The owner
// re-subscribes with force=true when it wants the stream back.
type Manager struct {
	client *Client
	logger logging.Logger

	timeoutMu sync.Mutex
	timeout   time.Duration

	tickerMu sync.Mutex
	tickers  map[string]models.TickerData

	fillsMu sync.Mutex
	fills   []models.FillData

	ordersMu sync.Mutex
	orders   []models.OrderData
}

// NewManager builds a manager over client. Blocking reads default to a 30
// second timeout.
func NewManager(client *Client) *Manager {
	return &Manager{
		client:  client,
		logger:  client.logger,
		timeout: 30 * time.Second,
		tickers: make(map[string]models.TickerData),
	}
}

// SetTimeout replaces the shared bound for all blocking reads.
func (m *Manager) SetTimeout(timeout time.Duration) {
	m.timeoutMu.Lock()
	m.timeout = timeout
	m.timeoutMu.Unlock()
}

// Timeout returns the shared blocking-read bound.
func (m *Manager) Timeout() time.Duration {
	m.timeoutMu.Lock()
	defer m.timeoutMu.Unlock()
	return m.timeout
}

// SetCredentials replaces the credentials used by future private-channel
// subscriptions.
func (m *Manager) SetCredentials(creds config.Credentials) {
	m.client.SetCredentials(creds)
}

// subscribe enforces the one-channel-per-name invariant: an existing live
// channel is kept unless force is set, in which case it is torn down and
// replaced.
func (m *Manager) subscribe(ctx context.Context, pair string, channel models.Channel, force bool, callback EventCallback) error {
	name := ComposeStreamName(pair, channel)

	if existing := m.client.FindStream(name); existing != nil {
		if !force {
			return nil
		}
		m.client.Unsubscribe(name)
	}

	_, err := m.client.StartChannel(ctx, pair, channel, callback)
	return err
}

// SubscribeTickerStream opens the ticker channel for pair. Updates overwrite
// the cached ticker for that market; control frames are logged only.
func (m *Manager) SubscribeTickerStream(ctx context.Context, pair string, force bool) error {
	return m.subscribe(ctx, pair, models.ChannelTicker, force, func(err error, event models.Event) bool {
		if err != nil {
			m.logger.Error("ticker stream failed",
				logging.String("pair", pair),
				logging.Error(err),
			)
			return false
		}

		if event.Ticker == nil {
			m.logControlFrame(event)
			return true
		}

		m.tickerMu.Lock()
		m.tickers[event.Market] = *event.Ticker
		m.tickerMu.Unlock()
		return true
	})
}

// SubscribeFillsStream opens the private fills channel. Fill events are
// appended to a pending list consumed by ReadFillData.
func (m *Manager) SubscribeFillsStream(ctx context.Context, force bool) error {
	return m.subscribe(ctx, "", models.ChannelFills, force, func(err error, event models.Event) bool {
		if err != nil {
			m.logger.Error("fills stream failed", logging.Error(err))
			return false
		}

		if event.Fill == nil {
			m.logControlFrame(event)
			return true
		}

		m.fillsMu.Lock()
		m.fills = append(m.fills, *event.Fill)
		m.fillsMu.Unlock()
		return true
	})
}

// SubscribeOrdersStream opens the private orders channel. Order events are
// appended to a pending list consumed by ReadOrderData.
func (m *Manager) SubscribeOrdersStream(ctx context.Context, force bool) error {
	return m.subscribe(ctx, "", models.ChannelOrders, force, func(err error, event models.Event) bool {
		if err != nil {
			m.logger.Error("orders stream failed", logging.Error(err))
			return false
		}

		if event.Order == nil {
			m.logControlFrame(event)
			return true
		}

		m.ordersMu.Lock()
		m.orders = append(m.orders, *event.Order)
		m.ordersMu.Unlock()
		return true
	})
}

func (m *Manager) logControlFrame(event models.Event) {
	if event.Type == models.ResponseTypeError {
		m.logger.Warn("stream error frame",
			logging.String("channel", string(event.Channel)),
			logging.Int("code", event.Code),
			logging.String("msg", event.Msg),
		)
		return
	}

	m.logger.Info("stream control frame",
		logging.String("type", string(event.Type)),
		logging.String("channel", string(event.Channel)),
		logging.String("market", event.Market),
	)
}

// ReadTickerData returns the latest cached ticker for pair, polling until
// one arrives or the timeout expires.
func (m *Manager) ReadTickerData(pair string) (models.TickerData, bool) {
	tries := int(m.Timeout() / tickerPollInterval)

	for i := 0; i <= tries; i++ {
		m.tickerMu.Lock()
		data, ok := m.tickers[pair]
		m.tickerMu.Unlock()
		if ok {
			return data, true
		}

		time.Sleep(tickerPollInterval)
	}

	return models.TickerData{}, false
}

// ReadFillData waits for a fill whose id matches the order's server id or
// its client id, removes it from the pending list and returns it. Each fill
// is delivered to at most one reader.
func (m *Manager) ReadFillData(order models.Order) (models.FillData, bool) {
	tries := int(m.Timeout() / listPollInterval)

	for i := 0; i <= tries; i++ {
		m.fillsMu.Lock()
		for idx, fill := range m.fills {
			if matchesOrder(fill.ID, order) {
				m.fills = append(m.fills[:idx], m.fills[idx+1:]...)
				m.fillsMu.Unlock()
				return fill, true
			}
		}
		m.fillsMu.Unlock()

		time.Sleep(listPollInterval)
	}

	return models.FillData{}, false
}

// ReadOrderData waits for an order update whose id matches the order's
// server id or its client id, removes it from the pending list and returns
// it.
func (m *Manager) ReadOrderData(order models.Order) (models.OrderData, bool) {
	tries := int(m.Timeout() / listPollInterval)

	for i := 0; i <= tries; i++ {
		m.ordersMu.Lock()
		for idx, data := range m.orders {
			if matchesOrder(data.ID, order) {
				m.orders = append(m.orders[:idx], m.orders[idx+1:]...)
				m.ordersMu.Unlock()
				return data, true
			}
		}
		m.ordersMu.Unlock()

		time.Sleep(listPollInterval)
	}

	return models.OrderData{}, false
}

// matchesOrder reports whether an event id refers to order, by server id or
// by numeric client id.
func matchesOrder(id int64, order models.Order) bool {
	if id == order.ID {
		return true
	}
	clientID, err := strconv.ParseInt(order.ClientID, 10, 64)
	return err == nil && id == clientID
}

// PingAll probes every live channel. Drive this roughly every 15 seconds to
// keep private channels alive.
func (m *Manager) PingAll() {
	m.client.PingAll()
}

// UnsubscribeAll tears down every channel. Cached data survives and stays
// readable.
func (m *Manager) UnsubscribeAll() {
	m.client.UnsubscribeAll()
}
