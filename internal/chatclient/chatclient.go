// Package chatclient is the transport-neutral boundary between a chat
// application and the protocol engine that carries its messages.
package chatclient

import "strings"

// Message is a line of text received on a MessageChannel
type Message struct {
	OriginatingUsername string
	Payload             string
}

// FromBot reports whether the message was sent by botName
func (m Message) FromBot(botName string) bool {
	return strings.EqualFold(m.OriginatingUsername, botName)
}

// ConnectionListener is told when the connection is ready for use
type ConnectionListener interface {
	OnConnectionEstablished()
}

// MessageListener receives messages posted to a channel
type MessageListener interface {
	OnMessageReceived(msg Message)
}

// MessageChannel is a named conversation the application can post to
type MessageChannel interface {
	RegisterListener(listener MessageListener)
	SendMessage(text string)
}

// ClientConnection opens a session and hands out channels
type ClientConnection interface {
	Connect(listener ConnectionListener)
	Channel(name string) MessageChannel
}

// ConnectionListenerFunc adapts a function to ConnectionListener
type ConnectionListenerFunc func()

// OnConnectionEstablished calls f
func (f ConnectionListenerFunc) OnConnectionEstablished() {
	f()
}

// MessageListenerFunc adapts a function to MessageListener
type MessageListenerFunc func(Message)

// OnMessageReceived calls f(msg)
func (f MessageListenerFunc) OnMessageReceived(msg Message) {
	f(msg)
}
