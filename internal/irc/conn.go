package irc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"
	"gopkg.in/irc.v4"

	relayerrors "github.com/yourusername/relay/internal/errors"
	"github.com/yourusername/relay/internal/ircparse"
	"github.com/yourusername/relay/internal/output"
)

// DefaultCloseTimeout bounds how long Close waits for the read loop
const DefaultCloseTimeout = 5 * time.Second

var (
	// ErrNotDisconnected is returned by Open on a connection that is in use
	ErrNotDisconnected = errors.New("connection is not disconnected")
	// ErrNotOpen is returned by Close on a connection that is not open
	ErrNotOpen = errors.New("connection is not open")
	// ErrCloseTimeout is returned when the read loop outlives CloseTimeout
	ErrCloseTimeout = errors.New("timed out waiting for read loop to stop")
)

// ConnState is the lifecycle state of a Connection
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("ConnState(%d)", int32(s))
	}
}

// ConnectionConfig describes where and how to connect
type ConnectionConfig struct {
	Addr              string
	Proxy             string // SOCKS5 host:port; empty uses the environment
	QuitMessage       string
	CloseTimeout      time.Duration
	KeepaliveInterval time.Duration // 0 disables client PINGs
	KeepaliveTimeout  time.Duration

	// Dialer overrides the proxy selection. Tests use it to hand in one end
	// of a net.Pipe.
	Dialer proxy.ContextDialer
}

// Connection owns one socket to the server: it dials, reads and dispatches
// lines on a single goroutine, and serializes writes from any goroutine.
type Connection struct {
	cfg     ConnectionConfig
	handler Handler
	logger  output.Logger
	dialer  proxy.ContextDialer

	mu        sync.Mutex
	state     ConnState
	conn      net.Conn
	cancel    context.CancelFunc
	done      chan struct{}
	closing   bool
	sessionID string
	quitMsg   string

	writeMu  sync.Mutex
	lastRead atomic.Int64
}

// NewConnection creates a connection that reports to handler
func NewConnection(cfg ConnectionConfig, handler Handler, logger output.Logger) (*Connection, error) {
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = DefaultCloseTimeout
	}
	if logger == nil {
		logger = output.NopLogger{}
	}

	dialer := cfg.Dialer
	if dialer == nil {
		var err error
		dialer, err = newDialer(cfg.Proxy)
		if err != nil {
			return nil, err
		}
	}

	return &Connection{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		dialer:  dialer,
	}, nil
}

// newDialer picks a SOCKS5 dialer when proxyAddr is set, and otherwise
// whatever ALL_PROXY/NO_PROXY select in the environment
func newDialer(proxyAddr string) (proxy.ContextDialer, error) {
	base := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	if proxyAddr != "" {
		d, err := proxy.SOCKS5("tcp", proxyAddr, nil, base)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", proxyAddr, err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", proxyAddr)
		}
		return cd, nil
	}

	if cd, ok := proxy.FromEnvironmentUsing(base).(proxy.ContextDialer); ok {
		return cd, nil
	}
	return base, nil
}

// State returns the current lifecycle state
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID identifies the current (or last) session
func (c *Connection) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Open starts connecting in the background. It only works from
// StateDisconnected; progress is reported to the handler.
func (c *Connection) Open() error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrNotDisconnected, state)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.state = StateConnecting
	c.cancel = cancel
	c.done = make(chan struct{})
	c.closing = false
	c.quitMsg = c.cfg.QuitMessage
	c.sessionID = uuid.NewString()
	done := c.done
	c.mu.Unlock()

	c.logger.Info("Connecting to %s...", c.cfg.Addr)
	go c.run(ctx, done)
	return nil
}

// Close sends QUIT, tears down the socket and waits for the read loop to
// stop, for at most CloseTimeout. It works from StateConnecting and
// StateConnected. Must not be called from a Handler.
func (c *Connection) Close() error {
	return c.CloseWithMessage("")
}

// CloseWithMessage is Close with a QUIT reason; empty uses the configured one
func (c *Connection) CloseWithMessage(reason string) error {
	done, ok := c.beginClose(reason)
	if !ok {
		return ErrNotOpen
	}

	select {
	case <-done:
		return nil
	case <-time.After(c.cfg.CloseTimeout):
		c.logger.Warning("Read loop did not stop within %v", c.cfg.CloseTimeout)
		return ErrCloseTimeout
	}
}

// shutdown is Close without the wait. It is safe on the read goroutine,
// which is where fatal protocol errors are detected.
func (c *Connection) shutdown(reason string) {
	c.beginClose(reason)
}

func (c *Connection) beginClose(reason string) (chan struct{}, bool) {
	c.mu.Lock()
	if c.state != StateConnecting && c.state != StateConnected {
		c.mu.Unlock()
		return nil, false
	}
	c.state = StateDisconnecting
	c.closing = true
	if reason != "" {
		c.quitMsg = reason
	}
	conn, cancel, done, quitMsg := c.conn, c.cancel, c.done, c.quitMsg
	c.mu.Unlock()

	c.logger.Info("Disconnecting from %s", c.cfg.Addr)

	if conn != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.CloseTimeout))
		quit := &irc.Message{Command: "QUIT"}
		if quitMsg != "" {
			quit.Params = []string{quitMsg}
		}
		c.WriteMessage(quit)
		_ = conn.Close()
	}
	cancel()

	return done, true
}

// WriteLine sends one line. Anything from the first CR or LF on is dropped
// so a caller cannot smuggle in a second command. Write failures are logged
// and otherwise ignored; the read loop notices a dead socket.
func (c *Connection) WriteLine(text string) {
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.logger.Warning("Dropping outbound line, not connected: %s", text)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := io.WriteString(conn, text+"\r\n"); err != nil {
		c.logger.Warning("Write failed: %v", err)
	}
}

// WriteMessage serializes msg and sends it
func (c *Connection) WriteMessage(msg *irc.Message) {
	c.WriteLine(msg.String())
}

// run is the connection goroutine: dial, announce the link, read until the
// socket dies, then report the disconnect. It is the only place the state
// returns to StateDisconnected.
func (c *Connection) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	conn, err := c.dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		if c.requestedClose() {
			c.finish(nil)
			return
		}
		c.logger.Error("Failed to connect: %v", err)
		c.finish(relayerrors.NewTransportError("connection to "+c.cfg.Addr+" failed", err))
		return
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		_ = conn.Close()
		c.finish(nil)
		return
	}
	c.conn = conn
	sessionID := c.sessionID
	c.mu.Unlock()

	c.touch()
	c.logger.Success("Connected to %s", c.cfg.Addr)
	c.handler.HandleEvent(LinkEvent{SessionID: sessionID, Addr: c.cfg.Addr})

	keepaliveCtx, stopKeepalive := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if c.cfg.KeepaliveInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.keepalive(keepaliveCtx, conn)
		}()
	}

	readErr := c.readLoop(conn)

	stopKeepalive()
	wg.Wait()
	_ = conn.Close()

	if c.requestedClose() {
		c.finish(nil)
		return
	}

	c.mu.Lock()
	c.state = StateDisconnecting
	c.mu.Unlock()

	if readErr == nil {
		readErr = io.EOF
	}
	c.logger.Error("Connection to %s lost: %v", c.cfg.Addr, readErr)
	c.finish(relayerrors.NewTransportError("connection lost", readErr))
}

func (c *Connection) requestedClose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

// finish moves to StateDisconnected and reports why
func (c *Connection) finish(cause error) {
	c.mu.Lock()
	c.state = StateDisconnected
	c.conn = nil
	c.closing = false
	c.mu.Unlock()

	c.logger.Info("Disconnected from %s", c.cfg.Addr)
	c.handler.HandleEvent(DisconnectedEvent{Err: cause})
}

// readLoop reads lines until the socket fails. Each line is parsed,
// dispatched and fully handled before the next one is read.
func (c *Connection) readLoop(conn net.Conn) error {
	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadBytes('\n')
		if len(raw) > 0 {
			c.touch()
			c.handleLine(ircparse.Decode(raw))
		}
		if err != nil {
			return err
		}
	}
}

func (c *Connection) handleLine(text string) {
	line, err := ircparse.Parse(text)
	if err != nil {
		c.handler.HandleEvent(ParseErrorEvent{Line: text, Err: err})
		return
	}

	ev := Dispatch(line)
	if ev == nil {
		return
	}

	if welcome, ok := ev.(WelcomeEvent); ok && isWelcomeClass(welcome.Code) && c.markConnected() {
		ev = ConnectedEvent{WelcomeEvent: welcome}
	}
	c.handler.HandleEvent(ev)
}

// markConnected flips Connecting to Connected, once per session
func (c *Connection) markConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnecting {
		return false
	}
	c.state = StateConnected
	return true
}

func (c *Connection) touch() {
	c.lastRead.Store(time.Now().UnixNano())
}

func (c *Connection) sinceLastRead() time.Duration {
	return time.Since(time.Unix(0, c.lastRead.Load()))
}
