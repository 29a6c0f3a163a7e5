package irc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/relay/internal/chatclient"
)

func TestClient_ConnectAndChat(t *testing.T) {
	e, srv, _ := newTestEngine(t)
	client := NewClient(e)
	assert.Same(t, e, client.Engine())

	established := make(chan struct{}, 1)
	client.Connect(chatclient.ConnectionListenerFunc(func() {
		established <- struct{}{}
	}))
	srv.expect("USER")
	srv.send(":irc.test 001 relay :Welcome")

	select {
	case <-established:
	case <-time.After(testTimeout):
		t.Fatal("connection listener was not called")
	}

	channel := client.Channel("Test")
	assert.Equal(t, []string{"#test"}, srv.expect("JOIN").Params)

	received := make(chan chatclient.Message, 4)
	channel.RegisterListener(chatclient.MessageListenerFunc(func(msg chatclient.Message) {
		received <- msg
	}))

	srv.send(":alice!a@h PRIVMSG #test :\x01ACTION ignores this\x01")
	srv.send(":alice!a@h PRIVMSG #test :hello")

	select {
	case msg := <-received:
		assert.Equal(t, chatclient.Message{OriginatingUsername: "alice", Payload: "hello"}, msg)
		assert.True(t, msg.FromBot("ALICE"))
	case <-time.After(testTimeout):
		t.Fatal("message listener was not called")
	}

	channel.SendMessage("hi alice")
	msg := srv.expect("PRIVMSG")
	require.Len(t, msg.Params, 2)
	assert.Equal(t, "hi alice", msg.Params[1])
}
