package irc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/relay/internal/output"
)

const testTimeout = 2 * time.Second

// pipeDialer hands out one end of a net.Pipe instead of dialing
type pipeDialer struct {
	conn net.Conn
}

func (d *pipeDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.conn, nil
}

// fakeServer is the far end of the pipe. Every line the client writes is
// queued on lines.
type fakeServer struct {
	t     *testing.T
	conn  net.Conn
	lines chan string
	syncs atomic.Int64
}

func newFakeServer(t *testing.T) (*fakeServer, *pipeDialer) {
	t.Helper()
	client, server := net.Pipe()
	s := &fakeServer{t: t, conn: server, lines: make(chan string, 256)}

	go func() {
		defer close(s.lines)
		scanner := bufio.NewScanner(server)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
	}()

	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return s, &pipeDialer{conn: client}
}

// send writes one line to the client
func (s *fakeServer) send(line string) {
	s.t.Helper()
	_ = s.conn.SetWriteDeadline(time.Now().Add(testTimeout))
	_, err := io.WriteString(s.conn, line+"\r\n")
	require.NoError(s.t, err)
}

// expect skips client lines until one with command arrives
func (s *fakeServer) expect(command string) ircmsg.Message {
	s.t.Helper()
	timeout := time.After(testTimeout)
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				s.t.Fatalf("connection closed while waiting for %s", command)
			}
			msg, err := ircmsg.ParseLine(line)
			require.NoError(s.t, err, "client sent %q", line)
			if msg.Command == command {
				return msg
			}
		case <-timeout:
			s.t.Fatalf("timed out waiting for %s", command)
		}
	}
}

// sync round-trips a PING so every line sent before it has been handled
func (s *fakeServer) sync() {
	s.t.Helper()
	token := fmt.Sprintf("sync-%d", s.syncs.Add(1))
	s.send("PING :" + token)
	for {
		msg := s.expect("PONG")
		if len(msg.Params) > 0 && msg.Params[len(msg.Params)-1] == token {
			return
		}
	}
}

// hangUp drops the connection from the server side
func (s *fakeServer) hangUp() {
	_ = s.conn.Close()
}

func testEngineConfig(dialer *pipeDialer) EngineConfig {
	return EngineConfig{
		Connection: ConnectionConfig{
			Addr:         "irc.test:6667",
			QuitMessage:  "bye",
			CloseTimeout: time.Second,
			Dialer:       dialer,
		},
		Identity: Identity{
			PrimaryNick:   "relay",
			AlternateNick: "relay_",
			UserName:      "relayuser",
			FullName:      "Relay Client",
		},
		AppName:    "relay",
		AppVersion: "1.0.0",
		SourceURL:  "https://example.com/relay",
	}
}

// newTestEngine returns an engine wired to a fake server and a channel of
// every engine event it fires
func newTestEngine(t *testing.T) (*Engine, *fakeServer, <-chan EngineEvent) {
	t.Helper()
	srv, dialer := newFakeServer(t)

	e, err := NewEngine(testEngineConfig(dialer), output.NopLogger{})
	require.NoError(t, err)

	events := make(chan EngineEvent, 512)
	e.AddListener(EngineListenerFunc(func(ev EngineEvent) {
		events <- ev
	}))
	t.Cleanup(func() { _ = e.Close() })

	return e, srv, events
}

// connectAndRegister runs the handshake up to the first welcome
func connectAndRegister(t *testing.T, e *Engine, srv *fakeServer, events <-chan EngineEvent) {
	t.Helper()
	require.NoError(t, e.Connect())
	srv.expect("NICK")
	srv.expect("USER")
	srv.send(":irc.test 001 relay :Welcome to the test network relay")
	waitEvent(t, events, EventConnected)
}

func waitEvent(t *testing.T, events <-chan EngineEvent, kind EngineEventKind) EngineEvent {
	t.Helper()
	timeout := time.After(testTimeout)
	for {
		select {
		case ev := <-events:
			if ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", kind)
			return EngineEvent{}
		}
	}
}

// drain returns the events already queued
func drain(events <-chan EngineEvent) []EngineEvent {
	var out []EngineEvent
	for {
		select {
		case ev := <-events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// channelRecorder collects channel events
type channelRecorder struct {
	events chan ChannelEvent
}

func recordChannel(ch *Channel) *channelRecorder {
	r := &channelRecorder{events: make(chan ChannelEvent, 64)}
	ch.AddListener(ChannelListenerFunc(func(ev ChannelEvent) {
		r.events <- ev
	}))
	return r
}

func (r *channelRecorder) next(t *testing.T) ChannelEvent {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a channel event")
		return ChannelEvent{}
	}
}
