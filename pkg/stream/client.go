// Package stream implements the subscription layer over the WebSocket
// transport: a Client registry that opens one channel per composed stream
// name, and a Manager that caches ticker, fill and order events for blocking
// reads.
package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/veiloq/ftx-connector/pkg/config"
	"github.com/veiloq/ftx-connector/pkg/logging"
	"github.com/veiloq/ftx-connector/pkg/models"
	"github.com/veiloq/ftx-connector/pkg/sign"
	"github.com/veiloq/ftx-connector/pkg/websocket"
)

// ErrMissingCredentials is returned when a private channel is subscribed
// without an API key and secret.
var ErrMissingCredentials = errors.New("missing credentials")

// EventCallback receives every decoded event of a subscription. A transport
// failure is delivered once with err set and an empty event; the channel is
// already stopping at that point. Returning false stops the channel.
type EventCallback func(err error, event models.Event) bool

// ComposeStreamName derives the registry key of a subscription. The pair
// part is omitted for account-scoped channels.
func ComposeStreamName(pair string, channel models.Channel) string {
	if pair == "" {
		return string(channel)
	}
	return strings.ToLower(pair) + "@" + string(channel)
}

// Config holds the stream client settings.
type Config struct {
	// Endpoint is the WebSocket URL, e.g. wss://ftx.com/ws/.
	Endpoint string

	// PingInterval is the liveness window applied to every channel.
	PingInterval time.Duration

	Logger logging.Logger
}

// DefaultConfig returns production stream settings.
func DefaultConfig() Config {
	return Config{
		Endpoint:     "wss://ftx.com/ws/",
		PingInterval: 15 * time.Second,
		Logger:       logging.NewZapLogger(),
	}
}

// Client opens and tracks subscription channels. At most one live channel
// exists per composed stream name; stopped channels are forgotten on the
// next lookup.
type Client struct {
	config Config
	logger logging.Logger

	credMu sync.Mutex
	creds  config.Credentials

	mu       sync.Mutex
	channels map[string]*websocket.Channel
}

// NewClient builds a stream client. Credentials may be empty when only
// public channels are used.
func NewClient(creds config.Credentials, cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultConfig().Endpoint
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultConfig().PingInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewZapLogger()
	}

	return &Client{
		config:   cfg,
		logger:   cfg.Logger,
		creds:    creds,
		channels: make(map[string]*websocket.Channel),
	}
}

// SetCredentials replaces the credentials wholesale. Channels opened before
// the call keep their original login.
func (c *Client) SetCredentials(creds config.Credentials) {
	c.credMu.Lock()
	c.creds = creds
	c.credMu.Unlock()
}

func (c *Client) credentials() config.Credentials {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	return c.creds
}

// StartChannel subscribes to one channel and returns its handle. Private
// channels are preceded by a signed login frame. The callback fires on the
// channel's read goroutine with decoded events.
func (c *Client) StartChannel(ctx context.Context, pair string, channel models.Channel, callback EventCallback) (*websocket.Channel, error) {
	name := ComposeStreamName(pair, channel)

	frames, err := c.initialFrames(pair, channel)
	if err != nil {
		return nil, err
	}

	cfg := websocket.Config{
		URL:          c.config.Endpoint,
		StreamName:   name,
		PingInterval: c.config.PingInterval,
		DialAttempts: 3,
		DialDelay:    time.Second,
		Logger:       c.logger,
	}

	handle, err := websocket.Start(ctx, cfg, frames, c.wrap(name, callback))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.channels[name] = handle
	c.mu.Unlock()

	return handle, nil
}

// initialFrames builds the outbound queue drained before streaming starts:
// login first on private channels, then subscribe.
func (c *Client) initialFrames(pair string, channel models.Channel) ([][]byte, error) {
	var frames [][]byte

	if channel.Private() {
		creds := c.credentials()
		if !creds.Valid() {
			return nil, ErrMissingCredentials
		}

		ts := time.Now().UnixMilli()
		login, err := json.Marshal(models.LoginRequest{
			Op: "login",
			Args: models.LoginArgs{
				Key:        creds.Key,
				SubAccount: creds.SubAccount,
				Sign:       sign.Signature(creds.Secret, sign.LoginPayload(ts)),
				Time:       ts,
			},
		})
		if err != nil {
			return nil, err
		}
		frames = append(frames, login)
	}

	subscribe, err := json.Marshal(models.SubscribeRequest{
		Op:      "subscribe",
		Channel: channel,
		Market:  pair,
	})
	if err != nil {
		return nil, err
	}

	return append(frames, subscribe), nil
}

// wrap adapts the raw frame callback to typed events. Transport errors are
// terminal; API error frames are forwarded with code and message; frames
// that fail to decode are dropped so one malformed message cannot kill the
// subscription.
func (c *Client) wrap(name string, callback EventCallback) websocket.MessageCallback {
	return func(err error, raw []byte) bool {
		if err != nil {
			callback(err, models.Event{})
			return false
		}

		if code, msg, ok := models.IsAPIError(raw); ok {
			return callback(nil, models.Event{
				Type: models.ResponseTypeError,
				Code: code,
				Msg:  msg,
			})
		}

		var event models.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.logger.Warn("dropping undecodable frame",
				logging.String("stream", name),
				logging.Error(err),
			)
			return true
		}

		return callback(nil, event)
	}
}

// FindStream drops stopped channels from the registry, then returns the
// live channel for name, or nil.
func (c *Client) FindStream(name string) *websocket.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, handle := range c.channels {
		if handle.Stopped() {
			delete(c.channels, key)
		}
	}

	return c.channels[name]
}

// Unsubscribe stops and drops the channel for name, if any.
func (c *Client) Unsubscribe(name string) {
	c.mu.Lock()
	handle := c.channels[name]
	delete(c.channels, name)
	c.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
}

// UnsubscribeAll stops and drops every channel.
func (c *Client) UnsubscribeAll() {
	c.mu.Lock()
	handles := make([]*websocket.Channel, 0, len(c.channels))
	for name, handle := range c.channels {
		handles = append(handles, handle)
		delete(c.channels, name)
	}
	c.mu.Unlock()

	for _, handle := range handles {
		handle.Stop()
	}
}

// PingAll sends a liveness probe on every live channel. Intended to be
// driven by the caller roughly every 15 seconds.
func (c *Client) PingAll() {
	c.mu.Lock()
	handles := make([]*websocket.Channel, 0, len(c.channels))
	for _, handle := range c.channels {
		if !handle.Stopped() {
			handles = append(handles, handle)
		}
	}
	c.mu.Unlock()

	for _, handle := range handles {
		if err := handle.Ping(); err != nil {
			c.logger.Warn("ping failed",
				logging.String("stream", handle.StreamName()),
				logging.Error(err),
			)
		}
	}
}
