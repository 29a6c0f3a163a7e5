package irc

// Event is what the dispatcher makes of one inbound line, plus the
// lifecycle notifications the Connection raises itself. The set is closed:
// only types in this file implement it.
type Event interface {
	event()
}

// LinkEvent is raised once the socket is up, before any line is read
type LinkEvent struct {
	SessionID string
	Addr      string
}

// WelcomeEvent is a registration reply (001-004, 422) or the start of the MOTD
type WelcomeEvent struct {
	Code   int
	Target string // our nick as the server sees it
	Text   string
}

// ConnectedEvent replaces the first WelcomeEvent of a session
type ConnectedEvent struct {
	WelcomeEvent
}

// DisconnectedEvent is raised once the read loop has stopped. Err is nil
// when the disconnect was requested.
type DisconnectedEvent struct {
	Err error
}

// PingEvent asks for a PONG with the same parameters
type PingEvent struct {
	Params []string
}

// PongEvent answers one of our keepalive PINGs
type PongEvent struct {
	Params []string
}

// MessageEvent is a plain PRIVMSG
type MessageEvent struct {
	Nick    string
	Address string
	Target  string
	Text    string
}

// ActionEvent is a PRIVMSG carrying a CTCP ACTION (/me)
type ActionEvent struct {
	Nick    string
	Address string
	Target  string
	Text    string
}

// ClientQueryEvent is a CTCP VERSION, SOURCE or CLIENTINFO request
type ClientQueryEvent struct {
	Nick    string
	Address string
	Target  string
	Query   string
}

// CTCPEvent is any other CTCP request
type CTCPEvent struct {
	Nick    string
	Target  string
	Command string
	Args    string
}

// NoticeEvent is a NOTICE that is not a CTCP reply
type NoticeEvent struct {
	Nick    string
	Address string
	Target  string
	Text    string
}

// VersionReplyEvent is a NOTICE carrying a CTCP VERSION reply
type VersionReplyEvent struct {
	Nick    string
	Version string
}

// ModeEvent is a MODE change on a channel or a user
type ModeEvent struct {
	Nick    string
	Address string
	Target  string
	Modes   string
	Args    []string
}

// JoinEvent is a JOIN by anyone, us included
type JoinEvent struct {
	Nick    string
	Address string
	Channel string
}

// PartEvent is a PART by anyone, us included
type PartEvent struct {
	Nick    string
	Address string
	Channel string
	Reason  string
}

// KickEvent is a KICK of anyone, us included
type KickEvent struct {
	Nick    string
	Address string
	Channel string
	Kicked  string
	Reason  string
}

// QuitEvent is a user leaving the network
type QuitEvent struct {
	Nick    string
	Address string
	Reason  string
}

// NickEvent is a nick change
type NickEvent struct {
	Nick    string
	Address string
	NewNick string
}

// TopicEvent is a TOPIC change or a 332 reply on join
type TopicEvent struct {
	Nick    string // empty for 332
	Channel string
	Topic   string
}

// NamesEvent is one 353 reply
type NamesEvent struct {
	Channel string
	Names   []string
}

// ServerErrorEvent is an ERROR line; the server closes the link after it
type ServerErrorEvent struct {
	Text string
}

// MotdKind tells the MOTD replies apart
type MotdKind int

const (
	MotdStart MotdKind = iota
	MotdLine
	MotdEnd
)

// MotdEvent is one 375, 372 or 376 reply
type MotdEvent struct {
	Kind MotdKind
	Text string
}

// ListStartEvent is a 321 reply
type ListStartEvent struct{}

// ListItemEvent is a 322 reply
type ListItemEvent struct {
	Channel string
	Users   int
	Topic   string
}

// ListEndEvent is a 323 reply
type ListEndEvent struct{}

// WhoisKind tells the WHOIS replies apart
type WhoisKind int

const (
	WhoisUser WhoisKind = iota
	WhoisServer
	WhoisOperator
	WhoisIdle
	WhoisEnd
	WhoisChannels
)

// WhoisEvent is one reply of a WHOIS exchange
type WhoisEvent struct {
	Kind   WhoisKind
	Nick   string
	Fields []string // positional fields after the nick
	Text   string
}

// NickRejectedEvent is a 432, 433 or 436 reply
type NickRejectedEvent struct {
	Code int
	Nick string
	Text string
}

// AlreadyRegisteredEvent is a 462 reply
type AlreadyRegisteredEvent struct {
	Line string
}

// NeedMoreParamsEvent is a 461 or 431 reply about a command we sent
type NeedMoreParamsEvent struct {
	Code    int
	Command string
	Text    string
}

// ServerInfoEvent is a 251 or 351 reply
type ServerInfoEvent struct {
	Code int
	Text string
}

// ChannelCountEvent is a 254 reply
type ChannelCountEvent struct {
	Count int
}

// UnsupportedEvent is a reply code the engine knows and ignores
type UnsupportedEvent struct {
	Command string
	Line    string
}

// UnknownEvent is a command token the engine does not recognize
type UnknownEvent struct {
	Command string
	Line    string
}

// ParseErrorEvent is a line missing tokens its command needs
type ParseErrorEvent struct {
	Line string
	Err  error
}

func (LinkEvent) event() {}
func (WelcomeEvent) event() {}
func (ConnectedEvent) event() {}
func (DisconnectedEvent) event() {}
func (PingEvent) event() {}
func (PongEvent) event() {}
func (MessageEvent) event() {}
func (ActionEvent) event() {}
func (ClientQueryEvent) event() {}
func (CTCPEvent) event() {}
func (NoticeEvent) event() {}
func (VersionReplyEvent) event() {}
func (ModeEvent) event() {}
func (JoinEvent) event() {}
func (PartEvent) event() {}
func (KickEvent) event() {}
func (QuitEvent) event() {}
func (NickEvent) event() {}
func (TopicEvent) event() {}
func (NamesEvent) event() {}
func (ServerErrorEvent) event() {}
func (MotdEvent) event() {}
func (ListStartEvent) event() {}
func (ListItemEvent) event() {}
func (ListEndEvent) event() {}
func (WhoisEvent) event() {}
func (NickRejectedEvent) event() {}
func (AlreadyRegisteredEvent) event() {}
func (NeedMoreParamsEvent) event() {}
func (ServerInfoEvent) event() {}
func (ChannelCountEvent) event() {}
func (UnsupportedEvent) event() {}
func (UnknownEvent) event() {}
func (ParseErrorEvent) event() {}

// Handler receives every Event a Connection produces, on its read goroutine
type Handler interface {
	HandleEvent(ev Event)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(Event)

// HandleEvent calls f(ev)
func (f HandlerFunc) HandleEvent(ev Event) {
	f(ev)
}
