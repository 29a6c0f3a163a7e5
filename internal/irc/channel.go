package irc

import (
	"strings"
	"sync"
)

// Commander is the part of the engine a Channel sends through
type Commander interface {
	JoinChannel(ch *Channel) *Channel
	PartChannel(ch *Channel)
	SendMessage(target, text string)
	SendAction(target, text string)
	SendVersion(nick string)
	SendRaw(line string)
	Send(command string, params ...string)
}

// ChannelEventKind says what happened in a channel
type ChannelEventKind int

const (
	ChannelMessage ChannelEventKind = iota
	ChannelAction
	ChannelJoin
	ChannelPart
	ChannelKick
	ChannelBan
	ChannelOp
	ChannelDeop
	ChannelMode
	ChannelNick
	ChannelTopic
	ChannelQuit
	ChannelNames
)

var channelEventNames = [...]string{
	ChannelMessage: "message",
	ChannelAction:  "action",
	ChannelJoin:    "join",
	ChannelPart:    "part",
	ChannelKick:    "kick",
	ChannelBan:     "ban",
	ChannelOp:      "op",
	ChannelDeop:    "deop",
	ChannelMode:    "mode",
	ChannelNick:    "nick",
	ChannelTopic:   "topic",
	ChannelQuit:    "quit",
	ChannelNames:   "names",
}

func (k ChannelEventKind) String() string {
	if k >= 0 && int(k) < len(channelEventNames) {
		return channelEventNames[k]
	}
	return "unknown"
}

// ChannelEvent is delivered to a Channel's listeners. Origin is who did it,
// Subject who it was done to (kicked nick, opped nick, ban mask, new nick).
type ChannelEvent struct {
	Kind           ChannelEventKind
	Channel        *Channel
	OriginNick     string
	OriginAddress  string
	SubjectNick    string
	SubjectAddress string
	Value          string // message text, topic, reason or mode string
	Names          []string
}

// ChannelListener receives a channel's events on the read goroutine
type ChannelListener interface {
	HandleChannelEvent(ev ChannelEvent)
}

// ChannelListenerFunc adapts a function to ChannelListener
type ChannelListenerFunc func(ChannelEvent)

// HandleChannelEvent calls f(ev)
func (f ChannelListenerFunc) HandleChannelEvent(ev ChannelEvent) {
	f(ev)
}

// Channel is a named conversation: a public channel, or a private one keyed
// by the other party's nick
type Channel struct {
	key       string
	display   string
	private   bool
	commander Commander

	mu        sync.RWMutex
	topic     string
	userCount int
	connected bool

	listeners listenerSet[ChannelListener]
}

// NormalizeChannelName returns the registry key for a channel name: trimmed,
// lower-cased, without a leading ':' or '#'. "#Test" and "test" are the
// same channel.
func NormalizeChannelName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, ":")
	name = strings.ToLower(name)
	return strings.TrimPrefix(name, "#")
}

// NewChannel creates a detached channel. Commands on it are no-ops until
// it is handed to Engine.JoinChannel.
func NewChannel(name string) *Channel {
	return newChannel(name, false, nil)
}

func newChannel(name string, private bool, commander Commander) *Channel {
	display := strings.TrimPrefix(strings.TrimSpace(name), ":")
	key := NormalizeChannelName(name)
	if private {
		key = strings.ToLower(display)
	}
	return &Channel{
		key:       key,
		display:   display,
		private:   private,
		commander: commander,
	}
}

// Name returns the normalized name
func (c *Channel) Name() string {
	return c.key
}

// IsPrivate reports whether this is a conversation with a single nick
func (c *Channel) IsPrivate() bool {
	return c.private
}

// Target returns the name to put on the wire: the nick for private
// channels, the name as given for &, + and ! channels, "#name" otherwise
func (c *Channel) Target() string {
	if c.private {
		return c.display
	}
	if c.key != "" && strings.ContainsRune("&+!", rune(c.key[0])) {
		return c.key
	}
	return "#" + c.key
}

// Equal reports whether both refer to the same conversation
func (c *Channel) Equal(other *Channel) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.key == other.key && c.private == other.private
}

// String returns the wire target
func (c *Channel) String() string {
	return c.Target()
}

// Topic returns the last topic seen
func (c *Channel) Topic() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topic
}

// UserCount returns the user count reported by the last LIST
func (c *Channel) UserCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userCount
}

// Connected reports whether we are in the channel
func (c *Channel) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Channel) setTopic(topic string) {
	c.mu.Lock()
	c.topic = topic
	c.mu.Unlock()
}

func (c *Channel) setUserCount(n int) {
	c.mu.Lock()
	c.userCount = n
	c.mu.Unlock()
}

func (c *Channel) setConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()
}

// AddListener registers l and returns a func that removes it again
func (c *Channel) AddListener(l ChannelListener) (remove func()) {
	return c.listeners.add(l)
}

// notify delivers ev to every listener. Only the engine calls this.
func (c *Channel) notify(ev ChannelEvent) {
	ev.Channel = c
	for _, l := range c.listeners.snapshot() {
		l.HandleChannelEvent(ev)
	}
}

// Connect joins the channel
func (c *Channel) Connect() {
	if c.commander == nil {
		return
	}
	c.commander.JoinChannel(c)
}

// Disconnect leaves the channel
func (c *Channel) Disconnect() {
	if c.commander == nil {
		return
	}
	c.commander.PartChannel(c)
}

// SendMessage sends text to the channel
func (c *Channel) SendMessage(text string) {
	if c.commander == nil {
		return
	}
	c.commander.SendMessage(c.Target(), text)
}

// SendAction sends text as a /me action
func (c *Channel) SendAction(text string) {
	if c.commander == nil {
		return
	}
	c.commander.SendAction(c.Target(), text)
}

// SendOp gives nick operator status
func (c *Channel) SendOp(nick string) {
	c.send("MODE", c.Target(), "+o", nick)
}

// SendDeop takes operator status from nick
func (c *Channel) SendDeop(nick string) {
	c.send("MODE", c.Target(), "-o", nick)
}

// SendBan bans a nick!user@host mask
func (c *Channel) SendBan(mask string) {
	c.send("MODE", c.Target(), "+b", mask)
}

// SendKick kicks nick with an optional reason
func (c *Channel) SendKick(nick, reason string) {
	if reason == "" {
		c.send("KICK", c.Target(), nick)
		return
	}
	c.send("KICK", c.Target(), nick, reason)
}

// SendVersion asks nick which client it runs
func (c *Channel) SendVersion(nick string) {
	if c.commander == nil {
		return
	}
	c.commander.SendVersion(nick)
}

// SendCommand sends a raw protocol line
func (c *Channel) SendCommand(line string) {
	if c.commander == nil {
		return
	}
	c.commander.SendRaw(line)
}

func (c *Channel) send(command string, params ...string) {
	if c.commander == nil {
		return
	}
	c.commander.Send(command, params...)
}

// listenerSet is a copy-on-notify listener registry. Removal is by the func
// add returns, so the same listener can be added twice and removed once.
type listenerSet[L any] struct {
	mu      sync.RWMutex
	nextID  int
	entries []listenerEntry[L]
}

type listenerEntry[L any] struct {
	id       int
	listener L
}

func (s *listenerSet[L]) add(l L) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, listenerEntry[L]{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *listenerSet[L]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *listenerSet[L]) snapshot() []L {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]L, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.listener
	}
	return out
}

func (s *listenerSet[L]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
