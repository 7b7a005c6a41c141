// Package websocket manages the persistent connections behind stream
// subscriptions. Each Channel owns exactly one WebSocket connection bound to
// one subscription, with its own read loop and ping-based liveness timer.
package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/gorilla/websocket"

	"github.com/veiloq/ftx-connector/pkg/logging"
)

// MessageCallback handles every inbound frame of a channel. A transport
// failure is delivered once with err set and raw nil. Returning false stops
// the channel; the callback is never invoked again after that.
type MessageCallback func(err error, raw []byte) bool

// Config holds the connection configuration of a single Channel.
type Config struct {
	// URL of the exchange WebSocket endpoint, e.g. wss://ftx.com/ws/.
	URL string

	// StreamName identifies the subscription this channel carries; it is
	// the dedup key in the stream registry.
	StreamName string

	// PingInterval is the liveness window: a ping is sent every interval,
	// and a ping that stays unanswered for a full interval kills the
	// channel.
	PingInterval time.Duration

	// DialAttempts bounds connection-establishment retries. Only the dial
	// retries; an established channel that fails stays down until the
	// owner resubscribes.
	DialAttempts uint
	DialDelay    time.Duration

	Logger logging.Logger
}

// DefaultConfig returns production channel settings.
func DefaultConfig() Config {
	return Config{
		URL:          "wss://ftx.com/ws/",
		PingInterval: 15 * time.Second,
		DialAttempts: 3,
		DialDelay:    time.Second,
		Logger:       logging.NewZapLogger(),
	}
}

// Channel is one live subscription connection. Create with Start; a Channel
// runs until the peer fails, the callback returns false, the liveness window
// expires or Stop is called.
type Channel struct {
	config   Config
	callback MessageCallback
	logger   logging.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	stopMu  sync.Mutex
	stopped bool

	pingMu       sync.Mutex
	awaitingPong bool
	lastPingAt   time.Time
	lastPongAt   time.Time

	done chan struct{}
}

// Start dials the endpoint, queues the initial frames (subscribe and, for
// private channels, login) and begins streaming. The initial frames are
// written strictly one at a time before any other outbound traffic. The
// callback fires on the channel's own read goroutine.
func Start(ctx context.Context, config Config, initialFrames [][]byte, callback MessageCallback) (*Channel, error) {
	c := &Channel{
		config:   config,
		callback: callback,
		logger:   config.Logger,
		done:     make(chan struct{}),
	}
	if c.logger == nil {
		c.logger = logging.NewZapLogger()
	}

	err := retry.Do(
		func() error {
			dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
			conn, _, err := dialer.DialContext(ctx, config.URL, nil)
			if err != nil {
				return err
			}
			c.conn = conn
			return nil
		},
		retry.Attempts(config.DialAttempts),
		retry.Delay(config.DialDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("dial attempt failed",
				logging.String("stream", config.StreamName),
				logging.Int("attempt", int(n+1)),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", config.URL, err)
	}

	c.conn.SetPongHandler(func(string) error {
		c.pingMu.Lock()
		c.lastPongAt = time.Now()
		c.awaitingPong = false
		c.pingMu.Unlock()
		return nil
	})

	for _, frame := range initialFrames {
		if err := c.write(frame); err != nil {
			c.Stop()
			return nil, fmt.Errorf("write initial frame: %w", err)
		}
	}

	go c.readLoop()
	go c.pingLoop()

	c.logger.Debug("channel streaming", logging.String("stream", config.StreamName))

	return c, nil
}

// StreamName returns the composed stream name this channel carries.
func (c *Channel) StreamName() string {
	return c.config.StreamName
}

// Stopped reports whether the channel has terminated for any reason.
func (c *Channel) Stopped() bool {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	return c.stopped
}

// Done is closed when the channel terminates.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Stop terminates the channel. It is idempotent and safe from any
// goroutine; after Stop no further callbacks are delivered.
func (c *Channel) Stop() {
	c.stopMu.Lock()
	if c.stopped {
		c.stopMu.Unlock()
		return
	}
	c.stopped = true
	close(c.done)
	c.stopMu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "unsubscribed"))
		_ = c.conn.Close()
	}

	c.logger.Debug("channel stopped", logging.String("stream", c.config.StreamName))
}

// Ping sends a liveness probe immediately and arms the pong deadline.
func (c *Channel) Ping() error {
	if c.Stopped() {
		return nil
	}

	c.writeMu.Lock()
	err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.pingMu.Lock()
	c.lastPingAt = time.Now()
	c.awaitingPong = true
	c.pingMu.Unlock()

	return nil
}

// Send writes one outbound frame.
func (c *Channel) Send(frame []byte) error {
	if c.Stopped() {
		return fmt.Errorf("channel %s stopped", c.config.StreamName)
	}
	return c.write(frame)
}

func (c *Channel) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// readLoop parses inbound frames until the peer fails or the callback asks
// to stop. Errors after a requested stop are suppressed.
func (c *Channel) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !c.Stopped() {
				c.logger.Warn("read failed",
					logging.String("stream", c.config.StreamName),
					logging.Error(err),
				)
				c.callback(err, nil)
				c.Stop()
			}
			return
		}

		if c.Stopped() {
			return
		}

		if !c.callback(nil, message) {
			c.Stop()
			return
		}
	}
}

// pingLoop enforces the liveness window: each tick either confirms the
// previous ping was answered and sends the next one, or declares the peer
// dead and stops the channel.
func (c *Channel) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.pingMu.Lock()
			dead := c.awaitingPong && time.Since(c.lastPingAt) >= c.config.PingInterval
			c.pingMu.Unlock()

			if dead {
				c.logger.Warn("ping unanswered, closing channel",
					logging.String("stream", c.config.StreamName),
				)
				c.Stop()
				return
			}

			if err := c.Ping(); err != nil {
				if !c.Stopped() {
					c.logger.Warn("ping failed",
						logging.String("stream", c.config.StreamName),
						logging.Error(err),
					)
					c.Stop()
				}
				return
			}
		}
	}
}
