package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"
)

// Payload is one inbound or outbound WebSocket message.
type Payload struct {
	Binary bool   // Binary frame (media fragment) vs text frame (envelope)
	Data   []byte // Message body
}

// Text creates a text payload.
func Text(s string) Payload {
	return Payload{Data: []byte(s)}
}

// Binary creates a binary payload.
func Binary(b []byte) Payload {
	return Payload{Binary: true, Data: b}
}

// Handler receives connection callbacks.
// Every callback carries the id returned by Connect so that the receiver
// can discard callbacks of a connection it already replaced.
// Callbacks are invoked from connector goroutines.
type Handler interface {
	OnOpen(conn uint64)
	OnMessage(conn uint64, p Payload)
	OnClose(conn uint64, code int, reason string)
	OnError(conn uint64, detail string)
}

// Options holds connector configuration.
type Options struct {
	DialTimeout        time.Duration // Dial + handshake timeout
	WriteTimeout       time.Duration // Per-message write deadline
	InsecureSkipVerify bool          // Accept self-signed certificates on wss
}

// Connector owns at most one live WebSocket connection.
type Connector struct {
	mu      sync.Mutex
	writeMu sync.Mutex

	handler Handler
	opts    Options

	conn       *websocket.Conn
	connID     uint64
	cancelDial context.CancelFunc
}

// NewConnector creates a connector reporting to handler.
func NewConnector(handler Handler, opts Options) *Connector {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Connector{
		handler: handler,
		opts:    opts,
	}
}

// Connect starts connecting to ep and returns the id of the new connection.
// Any existing connection or dial in progress is torn down first.
// The result is reported through OnOpen, or OnError followed by OnClose.
func (c *Connector) Connect(ctx context.Context, ep Endpoint) uint64 {
	c.mu.Lock()
	c.teardownLocked()
	c.connID++
	id := c.connID
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	c.cancelDial = cancel
	c.mu.Unlock()

	zlog.Info().Msgf("transport: connecting: url=%s conn=%d", ep.URL(), id)
	go c.dial(dialCtx, cancel, id, ep)
	return id
}

// Disconnect closes the live connection. No callbacks are delivered for it afterwards.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.connID++
}

// Connected reports whether a connection is open.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Current returns the id of the latest connection attempt.
func (c *Connector) Current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connID
}

// Send transmits p. It returns false when no connection is open or the write
// fails; callers check connectivity themselves. A write failure on the current
// connection is also reported through OnError.
func (c *Connector) Send(p Payload) bool {
	c.mu.Lock()
	conn := c.conn
	id := c.connID
	c.mu.Unlock()

	if conn == nil {
		zlog.Debug().Msgf("transport: send dropped, not connected: bytes=%d", len(p.Data))
		return false
	}

	msgType := websocket.TextMessage
	if p.Binary {
		msgType = websocket.BinaryMessage
	}

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	err := conn.WriteMessage(msgType, p.Data)
	c.writeMu.Unlock()

	if err != nil {
		detail := fmt.Sprintf("write failed: %v", err)
		zlog.Warn().Msgf("transport: %s: conn=%d", detail, id)
		if c.isCurrent(id) {
			c.handler.OnError(id, detail)
		}
		return false
	}
	return true
}

// SendText transmits a text frame.
func (c *Connector) SendText(s string) bool {
	return c.Send(Text(s))
}

func (c *Connector) dial(ctx context.Context, cancel context.CancelFunc, id uint64, ep Endpoint) {
	defer cancel()

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.opts.DialTimeout,
	}
	if ep.Scheme == SchemeSecure {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: c.opts.InsecureSkipVerify} //nolint:gosec // opt-in for self-signed servers
	}

	conn, resp, err := dialer.DialContext(ctx, ep.URL(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	if id != c.connID {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		zlog.Debug().Msgf("transport: discarding superseded dial: conn=%d", id)
		return
	}
	c.cancelDial = nil
	if err != nil {
		c.mu.Unlock()
		detail := describeDialError(ep, resp, err)
		zlog.Warn().Msgf("transport: %s", detail)
		c.handler.OnError(id, detail)
		c.handler.OnClose(id, websocket.CloseAbnormalClosure, detail)
		return
	}
	c.conn = conn
	c.mu.Unlock()

	zlog.Info().Msgf("transport: connected: url=%s conn=%d", ep.URL(), id)
	c.handler.OnOpen(id)
	c.readLoop(id, conn)
}

// readLoop delivers inbound messages in arrival order until the connection dies.
func (c *Connector) readLoop(id uint64, conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			c.finish(id, conn, err)
			return
		}
		if !c.isCurrent(id) {
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			c.handler.OnMessage(id, Binary(data))
		case websocket.TextMessage:
			c.handler.OnMessage(id, Payload{Data: data})
		}
	}
}

// finish reports the end of a connection unless it was already replaced or closed locally.
func (c *Connector) finish(id uint64, conn *websocket.Conn, err error) {
	c.mu.Lock()
	if id != c.connID {
		c.mu.Unlock()
		return
	}
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	code := websocket.CloseAbnormalClosure
	reason := err.Error()
	if ce, ok := err.(*websocket.CloseError); ok {
		code = ce.Code
		reason = ce.Text
	}

	if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		detail := fmt.Sprintf("connection lost: %v", err)
		zlog.Warn().Msgf("transport: %s: conn=%d", detail, id)
		c.handler.OnError(id, detail)
	}

	zlog.Info().Msgf("transport: closed: conn=%d code=%d reason=%q", id, code, reason)
	c.handler.OnClose(id, code, reason)
}

func (c *Connector) isCurrent(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return id == c.connID
}

// teardownLocked cancels a pending dial and closes the live connection.
// Must be called with c.mu held.
func (c *Connector) teardownLocked() {
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	if c.conn == nil {
		return
	}

	conn := c.conn
	c.conn = nil
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = conn.Close()
	zlog.Debug().Msgf("transport: closed connection: conn=%d", c.connID)
}

func describeDialError(ep Endpoint, resp *http.Response, err error) string {
	if resp != nil {
		return fmt.Sprintf("could not connect to %s: handshake rejected with HTTP %d", ep.URL(), resp.StatusCode)
	}
	return fmt.Sprintf("could not connect to %s: %v", ep.URL(), err)
}
