package irc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relayerrors "github.com/yourusername/relay/internal/errors"
	"github.com/yourusername/relay/internal/output"
)

type failingDialer struct {
	err error
}

func (d failingDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	return nil, d.err
}

func newTestConnection(t *testing.T, cfg ConnectionConfig) (*Connection, <-chan Event) {
	t.Helper()
	events := make(chan Event, 256)
	c, err := NewConnection(cfg, HandlerFunc(func(ev Event) { events <- ev }), output.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, events
}

func waitConnEvent[T Event](t *testing.T, events <-chan Event) T {
	t.Helper()
	timeout := time.After(testTimeout)
	for {
		select {
		case ev := <-events:
			if match, ok := ev.(T); ok {
				return match
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "disconnecting", StateDisconnecting.String())
}

func TestConnection_DialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	c, events := newTestConnection(t, ConnectionConfig{Addr: "irc.test:6667", Dialer: failingDialer{err: dialErr}})

	require.NoError(t, c.Open())
	ev := waitConnEvent[DisconnectedEvent](t, events)

	require.Error(t, ev.Err)
	assert.ErrorIs(t, ev.Err, dialErr)
	assert.True(t, relayerrors.IsFatal(ev.Err))
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConnection_OpenTwice(t *testing.T) {
	_, dialer := newFakeServer(t)
	c, events := newTestConnection(t, ConnectionConfig{Addr: "irc.test:6667", Dialer: dialer})

	require.NoError(t, c.Open())
	waitConnEvent[LinkEvent](t, events)
	assert.ErrorIs(t, c.Open(), ErrNotDisconnected)
}

func TestConnection_WelcomeMarksConnected(t *testing.T) {
	srv, dialer := newFakeServer(t)
	c, events := newTestConnection(t, ConnectionConfig{Addr: "irc.test:6667", Dialer: dialer})

	require.NoError(t, c.Open())
	link := waitConnEvent[LinkEvent](t, events)
	assert.Equal(t, c.SessionID(), link.SessionID)
	assert.Equal(t, StateConnecting, c.State())

	srv.send(":irc.test 002 relay :Your host is irc.test")
	connected := waitConnEvent[ConnectedEvent](t, events)
	assert.Equal(t, RplYourHost, connected.Code)
	assert.Equal(t, StateConnected, c.State())

	srv.send(":irc.test 001 relay :Welcome")
	welcome := waitConnEvent[WelcomeEvent](t, events)
	assert.Equal(t, RplWelcome, welcome.Code)
}

func TestConnection_ParseErrorsDoNotStopReading(t *testing.T) {
	srv, dialer := newFakeServer(t)
	c, events := newTestConnection(t, ConnectionConfig{Addr: "irc.test:6667", Dialer: dialer})

	require.NoError(t, c.Open())
	waitConnEvent[LinkEvent](t, events)

	srv.send(":only-an-origin")
	parseErr := waitConnEvent[ParseErrorEvent](t, events)
	assert.Equal(t, ":only-an-origin", parseErr.Line)

	srv.send("PING :still-here")
	ping := waitConnEvent[PingEvent](t, events)
	assert.Equal(t, []string{"still-here"}, ping.Params)
}

func TestConnection_DecodesLatin1(t *testing.T) {
	srv, dialer := newFakeServer(t)
	c, events := newTestConnection(t, ConnectionConfig{Addr: "irc.test:6667", Dialer: dialer})

	require.NoError(t, c.Open())
	waitConnEvent[LinkEvent](t, events)

	srv.send(":alice!a@h PRIVMSG #test :caf\xe9")
	msg := waitConnEvent[MessageEvent](t, events)
	assert.Equal(t, "café", msg.Text)
}

func TestConnection_CloseIsBounded(t *testing.T) {
	_, dialer := newFakeServer(t)

	release := make(chan struct{})
	linked := make(chan struct{})
	c, err := NewConnection(ConnectionConfig{
		Addr:         "irc.test:6667",
		Dialer:       dialer,
		CloseTimeout: 100 * time.Millisecond,
	}, HandlerFunc(func(ev Event) {
		if _, ok := ev.(LinkEvent); ok {
			close(linked)
			<-release
		}
	}), output.NopLogger{})
	require.NoError(t, err)

	require.NoError(t, c.Open())
	<-linked

	start := time.Now()
	err = c.Close()
	assert.ErrorIs(t, err, ErrCloseTimeout)
	assert.Less(t, time.Since(start), testTimeout)

	close(release)
	require.Eventually(t, func() bool { return c.State() == StateDisconnected }, testTimeout, 10*time.Millisecond)
}

func TestConnection_CloseWhileDisconnected(t *testing.T) {
	_, dialer := newFakeServer(t)
	c, _ := newTestConnection(t, ConnectionConfig{Addr: "irc.test:6667", Dialer: dialer})
	assert.ErrorIs(t, c.Close(), ErrNotOpen)
}

func TestConnection_KeepaliveTimeout(t *testing.T) {
	srv, dialer := newFakeServer(t)
	c, events := newTestConnection(t, ConnectionConfig{
		Addr:              "irc.test:6667",
		Dialer:            dialer,
		KeepaliveInterval: 20 * time.Millisecond,
		KeepaliveTimeout:  60 * time.Millisecond,
	})

	require.NoError(t, c.Open())
	waitConnEvent[LinkEvent](t, events)

	ping := srv.expect("PING")
	assert.Len(t, ping.Params, 1)

	ev := waitConnEvent[DisconnectedEvent](t, events)
	require.Error(t, ev.Err)
	engineErr, ok := relayerrors.AsEngineError(ev.Err)
	require.True(t, ok)
	assert.Equal(t, relayerrors.ErrorTypeTransport, engineErr.Type)
}

func TestConnection_WriteWhileDisconnectedIsDropped(t *testing.T) {
	_, dialer := newFakeServer(t)
	c, _ := newTestConnection(t, ConnectionConfig{Addr: "irc.test:6667", Dialer: dialer})

	assert.NotPanics(t, func() { c.WriteLine("PRIVMSG #test :nobody home") })
}
