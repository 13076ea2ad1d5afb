// Package feed streams realtime ticks from the GFDL NimbleWebStream
// websocket. It owns the connect/authenticate/subscribe/reconnect loop and
// delivers parsed ticks to a handler one at a time, in arrival order.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/logger"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

// Handler receives each realtime tick. The feed calls it synchronously, so a
// handler must not block.
type Handler func(tick models.Tick)

// Config holds the connection parameters and the subscription universe.
type Config struct {
	WSSURL         string
	Exchange       string
	APIKey         string
	Symbols        []string
	PingInterval   time.Duration
	AuthRetryDelay time.Duration
	ReconnectDelay time.Duration
}

// Client maintains the websocket session. It holds no market state; on
// reconnect the engine simply continues receiving ticks.
type Client struct {
	cfg     Config
	handler Handler
	onLive  func()
}

// NewClient creates a feed client. onLive, if non-nil, runs after the
// subscriptions are sent on each successful (re)connect.
func NewClient(cfg Config, handler Handler, onLive func()) *Client {
	return &Client{cfg: cfg, handler: handler, onLive: onLive}
}

// authRequest is the vendor handshake; the payload is opaque to the rest of
// the system.
type authRequest struct {
	MessageType string `json:"MessageType"`
	Password    string `json:"Password"`
}

type authResponse struct {
	Complete bool   `json:"Complete"`
	Comment  string `json:"Comment"`
}

type subscribeRequest struct {
	MessageType          string `json:"MessageType"`
	Exchange             string `json:"Exchange"`
	Unsubscribe          string `json:"Unsubscribe"`
	InstrumentIdentifier string `json:"InstrumentIdentifier"`
}

// realtimeMessage is the inbound wire record. Price and OI are pointers so a
// partial record is distinguishable from a zero value.
type realtimeMessage struct {
	MessageType          string   `json:"MessageType"`
	InstrumentIdentifier string   `json:"InstrumentIdentifier"`
	LastTradePrice       *float64 `json:"LastTradePrice"`
	OpenInterest         *int64   `json:"OpenInterest"`
}

// errAuthRejected distinguishes a vendor auth rejection from transport
// failures so the retry delay can differ.
var errAuthRejected = errors.New("feed: authentication rejected")

// Run connects and streams until ctx is cancelled, reconnecting after any
// failure. Auth rejections wait AuthRetryDelay; dropped connections wait
// ReconnectDelay.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := c.cfg.ReconnectDelay
		if errors.Is(err, errAuthRejected) {
			delay = c.cfg.AuthRetryDelay
		}
		logger.Warn("Feed disconnected: %v. Reconnecting in %v", err, delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) runConnection(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.WSSURL, nil)
	if err != nil {
		return fmt.Errorf("feed: dial: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop when ctx is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	// The pong handler and initial deadline must be installed here, before
	// any read and before the ping goroutine starts; the connection's
	// handler fields are not synchronized.
	interval := c.pingInterval()
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * interval))
	})
	if err := conn.SetReadDeadline(time.Now().Add(2 * interval)); err != nil {
		return fmt.Errorf("feed: set read deadline: %w", err)
	}

	logger.Info("Connected to feed at %s, authenticating", c.cfg.WSSURL)
	if err := c.authenticate(conn); err != nil {
		return err
	}

	logger.Info("Authentication successful, subscribing to %d symbols", len(c.cfg.Symbols))
	for _, symbol := range c.cfg.Symbols {
		req := subscribeRequest{
			MessageType:          "SubscribeRealtime",
			Exchange:             c.cfg.Exchange,
			Unsubscribe:          "false",
			InstrumentIdentifier: symbol,
		}
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("feed: subscribe %s: %w", symbol, err)
		}
	}
	logger.Info("Subscriptions sent, scanner is live")
	if c.onLive != nil {
		c.onLive()
	}

	go c.keepAlive(conn, stop)

	return c.readLoop(conn)
}

func (c *Client) authenticate(conn *websocket.Conn) error {
	if err := conn.WriteJSON(authRequest{MessageType: "Authenticate", Password: c.cfg.APIKey}); err != nil {
		return fmt.Errorf("feed: send auth: %w", err)
	}
	var resp authResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("feed: read auth response: %w", err)
	}
	if !resp.Complete {
		return fmt.Errorf("%w: %s", errAuthRejected, resp.Comment)
	}
	return nil
}

func (c *Client) pingInterval() time.Duration {
	if c.cfg.PingInterval > 0 {
		return c.cfg.PingInterval
	}
	return 20 * time.Second
}

// keepAlive pings the vendor on the configured interval; the pong handler
// installed in runConnection pushes the read deadline out on every pong.
// Exits when the connection or stop channel closes.
func (c *Client) keepAlive(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.pingInterval())
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: read: %w", err)
		}
		tick, ok := decodeTick(raw)
		if !ok {
			continue
		}
		c.handler(tick)
	}
}

// decodeTick parses a raw feed message, returning false for non-JSON payloads
// and for message types other than RealtimeResult.
func decodeTick(raw []byte) (models.Tick, bool) {
	var msg realtimeMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("Received a non-JSON feed message")
		return models.Tick{}, false
	}
	if msg.MessageType != "RealtimeResult" {
		return models.Tick{}, false
	}
	return models.Tick{
		Symbol:         msg.InstrumentIdentifier,
		LastTradePrice: msg.LastTradePrice,
		OpenInterest:   msg.OpenInterest,
	}, true
}
