package irc

import (
	"github.com/yourusername/relay/internal/chatclient"
)

// Client exposes an Engine through the chatclient interfaces
type Client struct {
	engine *Engine
}

var _ chatclient.ClientConnection = (*Client)(nil)

// NewClient wraps engine
func NewClient(engine *Engine) *Client {
	return &Client{engine: engine}
}

// Engine returns the wrapped engine
func (c *Client) Engine() *Engine {
	return c.engine
}

// Connect starts the session and calls listener once registration is done,
// every time it is done
func (c *Client) Connect(listener chatclient.ConnectionListener) {
	if listener != nil {
		c.engine.AddListener(EngineListenerFunc(func(ev EngineEvent) {
			if ev.Kind == EventConnected {
				listener.OnConnectionEstablished()
			}
		}))
	}
	_ = c.engine.Connect()
}

// Channel joins name and returns it as a MessageChannel
func (c *Client) Channel(name string) chatclient.MessageChannel {
	ch := c.engine.Channel(name)
	ch.Connect()
	return &messageChannel{channel: ch}
}

type messageChannel struct {
	channel *Channel
}

// RegisterListener forwards the channel's messages. Actions, joins and the
// rest are not chat messages and are left out.
func (m *messageChannel) RegisterListener(listener chatclient.MessageListener) {
	m.channel.AddListener(ChannelListenerFunc(func(ev ChannelEvent) {
		if ev.Kind != ChannelMessage {
			return
		}
		listener.OnMessageReceived(chatclient.Message{
			OriginatingUsername: ev.OriginNick,
			Payload:             ev.Value,
		})
	}))
}

func (m *messageChannel) SendMessage(text string) {
	m.channel.SendMessage(text)
}
