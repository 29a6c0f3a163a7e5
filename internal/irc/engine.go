package irc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ryanuber/go-glob"
	"gopkg.in/irc.v4"

	"github.com/yourusername/relay/internal/config"
	relayerrors "github.com/yourusername/relay/internal/errors"
	"github.com/yourusername/relay/internal/ircformat"
	"github.com/yourusername/relay/internal/output"
	"github.com/yourusername/relay/internal/ratelimit"
)

// Phase is where the engine is in the session lifecycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRegistering
	PhaseReady
	PhaseClosing
	PhaseNickExhausted
	PhaseAlreadyRegistered
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRegistering:
		return "registering"
	case PhaseReady:
		return "ready"
	case PhaseClosing:
		return "closing"
	case PhaseNickExhausted:
		return "nick exhausted"
	case PhaseAlreadyRegistered:
		return "already registered"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// terminal phases survive the disconnect they cause
func (p Phase) terminal() bool {
	return p == PhaseNickExhausted || p == PhaseAlreadyRegistered
}

// Identity is who we register as. CurrentNick only changes when the
// server confirms a nick.
type Identity struct {
	PrimaryNick   string
	AlternateNick string
	UserName      string
	FullName      string
	CurrentNick   string
}

// EngineConfig holds everything an Engine needs
type EngineConfig struct {
	Connection ConnectionConfig
	Identity   Identity
	AppName    string
	AppVersion string
	SourceURL  string
	Limiter    *ratelimit.Limiter // nil sends without pacing
}

// ConfigFrom maps the file configuration onto an EngineConfig
func ConfigFrom(cfg *config.Config) EngineConfig {
	return EngineConfig{
		Connection: ConnectionConfig{
			Addr:              cfg.Server.Addr(),
			Proxy:             cfg.Server.Proxy,
			QuitMessage:       cfg.Client.AppName + " " + cfg.Client.AppVersion,
			CloseTimeout:      cfg.Limits.GetCloseTimeoutDuration(),
			KeepaliveInterval: cfg.Limits.GetKeepaliveIntervalDuration(),
			KeepaliveTimeout:  cfg.Limits.GetKeepaliveTimeoutDuration(),
		},
		Identity: Identity{
			PrimaryNick:   cfg.Server.Nickname,
			AlternateNick: cfg.Server.AltNickname,
			UserName:      cfg.Server.Username,
			FullName:      cfg.Server.Realname,
		},
		AppName:    cfg.Client.AppName,
		AppVersion: cfg.Client.AppVersion,
		SourceURL:  cfg.Client.SourceURL,
		Limiter:    ratelimit.New(cfg.Limits.MessageRate, cfg.Limits.MessageBurst),
	}
}

// EngineEventKind says what an EngineEvent reports
type EngineEventKind int

const (
	EventConnected EngineEventKind = iota
	EventDisconnected
	EventStatus
	EventChannelAvailable
	EventChannelJoin
	EventChannelPart
)

func (k EngineEventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventStatus:
		return "status"
	case EventChannelAvailable:
		return "channel available"
	case EventChannelJoin:
		return "channel join"
	case EventChannelPart:
		return "channel part"
	default:
		return "unknown"
	}
}

// EngineEvent is delivered to engine listeners. Err is set on status events
// that report a failure and on disconnects that were not requested.
type EngineEvent struct {
	Kind    EngineEventKind
	Channel *Channel
	Message string
	Err     error
}

// EngineListener receives engine events on the read goroutine
type EngineListener interface {
	HandleEngineEvent(ev EngineEvent)
}

// EngineListenerFunc adapts a function to EngineListener
type EngineListenerFunc func(EngineEvent)

// HandleEngineEvent calls f(ev)
func (f EngineListenerFunc) HandleEngineEvent(ev EngineEvent) {
	f(ev)
}

// Engine is one chat session: it registers our identity, keeps the channel
// registry, answers the server and fans events out to listeners. It is the
// only Handler of its Connection.
type Engine struct {
	cfg     EngineConfig
	conn    *Connection
	logger  output.Logger
	limiter *ratelimit.Limiter

	mu           sync.Mutex
	phase        Phase
	identity     Identity
	altTried     bool
	channelCount int
	activeSearch *ChannelSearch

	channels  *registry
	listeners listenerSet[EngineListener]
}

// NewEngine creates an engine and its connection. Nothing is dialed until
// Connect.
func NewEngine(cfg EngineConfig, logger output.Logger) (*Engine, error) {
	if cfg.Identity.PrimaryNick == "" {
		return nil, relayerrors.NewConfigError("primary nickname is required", nil)
	}
	if cfg.Identity.AlternateNick == "" {
		cfg.Identity.AlternateNick = cfg.Identity.PrimaryNick + "_"
	}
	if cfg.Identity.UserName == "" {
		cfg.Identity.UserName = cfg.Identity.PrimaryNick
	}
	if cfg.Identity.FullName == "" {
		cfg.Identity.FullName = cfg.Identity.PrimaryNick
	}
	cfg.Identity.CurrentNick = cfg.Identity.PrimaryNick
	if logger == nil {
		logger = output.NopLogger{}
	}

	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		limiter:  cfg.Limiter,
		identity: cfg.Identity,
		channels: newRegistry(),
	}

	conn, err := NewConnection(cfg.Connection, e, logger)
	if err != nil {
		return nil, relayerrors.NewConfigError("cannot build connection", err)
	}
	e.conn = conn

	return e, nil
}

// Connect starts connecting in the background. Calling it while a session
// is open only produces a status event.
func (e *Engine) Connect() error {
	if err := e.conn.Open(); err != nil {
		e.status(fmt.Sprintf("Connect ignored: %v", err))
		return err
	}
	return nil
}

// Close quits with the configured message and waits for the disconnect
func (e *Engine) Close() error {
	return e.SendQuit("")
}

// SendQuit quits with reason and waits for the disconnect. Must not be
// called from a listener.
func (e *Engine) SendQuit(reason string) error {
	if state := e.conn.State(); state == StateConnecting || state == StateConnected {
		e.mu.Lock()
		if !e.phase.terminal() {
			e.phase = PhaseClosing
		}
		e.mu.Unlock()
	}

	err := e.conn.CloseWithMessage(reason)
	if errors.Is(err, ErrNotOpen) {
		e.status("Disconnect ignored: not connected")
	}
	return err
}

// State returns the connection state
func (e *Engine) State() ConnState {
	return e.conn.State()
}

// Phase returns the session phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Identity returns a copy of the identity, CurrentNick included
func (e *Engine) Identity() Identity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// CurrentNick returns the nick the server knows us by
func (e *Engine) CurrentNick() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity.CurrentNick
}

// SessionID identifies the current connection
func (e *Engine) SessionID() string {
	return e.conn.SessionID()
}

// AddListener registers l and returns a func that removes it again
func (e *Engine) AddListener(l EngineListener) (remove func()) {
	return e.listeners.add(l)
}

func (e *Engine) fire(ev EngineEvent) {
	for _, l := range e.listeners.snapshot() {
		l.HandleEngineEvent(ev)
	}
}

// status reports an informational message to listeners
func (e *Engine) status(message string) {
	e.fire(EngineEvent{Kind: EventStatus, Message: message})
}

// report logs err at a level matching its type and delivers it as status
func (e *Engine) report(err error) {
	engineErr, ok := relayerrors.AsEngineError(err)
	switch {
	case !ok:
		e.logger.Warning("%v", err)
	case engineErr.Fatal():
		e.logger.Error("%v", engineErr)
	case engineErr.Type == relayerrors.ErrorTypeUnknown || engineErr.Type == relayerrors.ErrorTypeUnsupported:
		e.logger.Info("%s", engineErr.Message)
	default:
		e.logger.Warning("%v", engineErr)
	}
	e.fire(EngineEvent{Kind: EventStatus, Message: err.Error(), Err: err})
}

// Channel returns the channel called name, creating and announcing it on
// first use
func (e *Engine) Channel(name string) *Channel {
	return e.channel(name, false)
}

// PrivateChannel returns the conversation with nick
func (e *Engine) PrivateChannel(nick string) *Channel {
	return e.channel(nick, true)
}

// LookupChannel returns a registered channel without creating it
func (e *Engine) LookupChannel(name string) *Channel {
	return e.channels.get(name, false)
}

// Channels returns every registered channel
func (e *Engine) Channels() []*Channel {
	return e.channels.all()
}

func (e *Engine) channel(name string, private bool) *Channel {
	ch, created := e.channels.getOrCreate(name, private, e)
	if created {
		e.fire(EngineEvent{Kind: EventChannelAvailable, Channel: ch})
	}
	return ch
}

// Join joins the channel called name
func (e *Engine) Join(name string) *Channel {
	return e.JoinChannel(e.Channel(name))
}

// JoinChannel registers ch if needed, sends JOIN and reports the join. The
// registered channel is returned; it differs from ch when ch was detached
// and a channel of that name already existed.
func (e *Engine) JoinChannel(ch *Channel) *Channel {
	ch, created := e.channels.adopt(ch, e)
	if created {
		e.fire(EngineEvent{Kind: EventChannelAvailable, Channel: ch})
	}

	ch.setConnected(true)
	e.logger.Info("Joining channel %s", ch.Target())
	e.Send("JOIN", ch.Target())
	e.fire(EngineEvent{Kind: EventChannelJoin, Channel: ch})
	return ch
}

// Part leaves the channel called name
func (e *Engine) Part(name string) {
	ch := e.channels.get(name, false)
	if ch == nil {
		target := newChannel(name, false, nil).Target()
		e.Send("PART", target)
		e.status("Parted " + target + ", which was not joined")
		return
	}
	e.PartChannel(ch)
}

// PartChannel sends PART, tells the channel and drops it from the registry
func (e *Engine) PartChannel(ch *Channel) {
	e.logger.Info("Leaving channel %s", ch.Target())
	if !ch.private {
		e.Send("PART", ch.Target())
	}

	ch.setConnected(false)
	ch.notify(ChannelEvent{Kind: ChannelPart, OriginNick: e.CurrentNick()})
	e.fire(EngineEvent{Kind: EventChannelPart, Channel: ch})
	e.channels.remove(ch)
}

// SendMessage sends text to target, paced by the flood limiter if one is set
func (e *Engine) SendMessage(target, text string) {
	if err := e.limiter.Wait(context.Background()); err != nil {
		e.logger.Warning("Rate limiter: %v", err)
	}
	e.Send("PRIVMSG", target, text)
}

// SendAction sends text as a /me action
func (e *Engine) SendAction(target, text string) {
	e.Send("PRIVMSG", target, FormatCTCPMessage("ACTION", text))
}

// SendVersion asks nick which client it runs
func (e *Engine) SendVersion(nick string) {
	e.Send("PRIVMSG", nick, FormatCTCPMessage("VERSION", ""))
}

// SendRaw sends line as is
func (e *Engine) SendRaw(line string) {
	e.conn.WriteLine(line)
}

// Send sends one command
func (e *Engine) Send(command string, params ...string) {
	e.conn.WriteMessage(&irc.Message{Command: command, Params: params})
}

// ProcessInput handles a line typed by a user: "/me text" sends an action,
// "/anything" is sent raw without the slash, everything else is a message
// to ch. Text too long for one line is sent as several. Actions and
// messages are echoed to ch's listeners.
func (e *Engine) ProcessInput(text string, ch *Channel) {
	switch {
	case strings.HasPrefix(text, "/me "):
		if ch == nil {
			e.status("No channel to send the action to")
			return
		}
		action := strings.TrimPrefix(text, "/me ")
		for _, part := range ircformat.Split(action, e.textBudget(ch.Target())-len(ctcpActionOverhead)) {
			e.SendAction(ch.Target(), part)
			ch.notify(ChannelEvent{Kind: ChannelAction, OriginNick: e.CurrentNick(), Value: part})
		}

	case strings.HasPrefix(text, "/"):
		e.SendRaw(strings.TrimPrefix(text, "/"))

	default:
		if ch == nil {
			e.status("No channel to send the message to")
			return
		}
		for _, part := range ircformat.Split(text, e.textBudget(ch.Target())) {
			e.SendMessage(ch.Target(), part)
			ch.notify(ChannelEvent{Kind: ChannelMessage, OriginNick: e.CurrentNick(), Value: part})
		}
	}
}

const (
	maxLineBytes = 512
	maxHostBytes = 63

	ctcpActionOverhead = "\x01ACTION \x01"
)

// textBudget is how many bytes of text fit in one PRIVMSG to target once
// the server has prefixed it with our full origin
func (e *Engine) textBudget(target string) int {
	id := e.Identity()
	nick := id.CurrentNick
	if nick == "" {
		nick = id.PrimaryNick
	}
	origin := len(":!@ ") + len(nick) + len(id.UserName) + maxHostBytes
	return maxLineBytes - len("\r\n") - origin - len("PRIVMSG  :") - len(target)
}

// isMe reports whether nick is our current nick
func (e *Engine) isMe(nick string) bool {
	return strings.EqualFold(nick, e.CurrentNick())
}

// conversation returns the channel a PRIVMSG or action belongs to: the
// sender's private channel when it was addressed to us
func (e *Engine) conversation(target, sender string) *Channel {
	if e.isMe(target) {
		return e.PrivateChannel(sender)
	}
	return e.Channel(target)
}

// HandleEvent is called by the Connection for every event, in order, on
// the read goroutine
func (e *Engine) HandleEvent(ev Event) {
	switch ev := ev.(type) {
	case LinkEvent:
		e.register(ev)
	case ConnectedEvent:
		e.onConnected(ev)
	case WelcomeEvent:
		e.onWelcome(ev)
	case DisconnectedEvent:
		e.onDisconnected(ev)

	case PingEvent:
		e.Send("PONG", ev.Params...)
	case PongEvent:
		// liveness is tracked by the connection

	case MessageEvent:
		ch := e.conversation(ev.Target, ev.Nick)
		ch.notify(ChannelEvent{Kind: ChannelMessage, OriginNick: ev.Nick, OriginAddress: ev.Address, Value: ev.Text})
	case ActionEvent:
		ch := e.conversation(ev.Target, ev.Nick)
		ch.notify(ChannelEvent{Kind: ChannelAction, OriginNick: ev.Nick, OriginAddress: ev.Address, Value: ev.Text})
	case ClientQueryEvent:
		e.answerClientQuery(ev)
		e.status(fmt.Sprintf("%s requested %s", ev.Nick, ev.Query))
	case CTCPEvent:
		e.logger.Info("Unhandled CTCP request from %s: %s", ev.Nick, ev.Command)
		e.status(fmt.Sprintf("Unhandled CTCP %s from %s", ev.Command, ev.Nick))
	case NoticeEvent:
		e.status(fmt.Sprintf("-%s- %s", ev.Nick, ev.Text))
	case VersionReplyEvent:
		e.status(fmt.Sprintf("%s is using %s", ev.Nick, ev.Version))

	case ModeEvent:
		e.onMode(ev)
	case JoinEvent:
		e.onJoin(ev)
	case PartEvent:
		e.onPart(ev)
	case KickEvent:
		e.onKick(ev)
	case QuitEvent:
		for _, ch := range e.channels.all() {
			ch.notify(ChannelEvent{Kind: ChannelQuit, OriginNick: ev.Nick, OriginAddress: ev.Address, Value: ev.Reason})
		}
	case NickEvent:
		e.onNick(ev)
	case TopicEvent:
		ch := e.Channel(ev.Channel)
		ch.setTopic(ev.Topic)
		ch.notify(ChannelEvent{Kind: ChannelTopic, OriginNick: ev.Nick, Value: ev.Topic})
	case NamesEvent:
		ch := e.Channel(ev.Channel)
		ch.notify(ChannelEvent{Kind: ChannelNames, Names: ev.Names})

	case ServerErrorEvent:
		e.logger.Error("IRC Error: %s", ev.Text)
		e.status("Server error: " + ev.Text)
	case MotdEvent:
		if ev.Kind == MotdLine {
			e.status(ev.Text)
		}
	case WhoisEvent:
		e.onWhois(ev)
	case ServerInfoEvent:
		e.status(ev.Text)
	case ChannelCountEvent:
		e.mu.Lock()
		e.channelCount = ev.Count
		e.mu.Unlock()

	case ListStartEvent:
		e.onListStart()
	case ListItemEvent:
		e.onListItem(ev)
	case ListEndEvent:
		e.onListEnd()

	case NickRejectedEvent:
		e.onNickRejected(ev)
	case AlreadyRegisteredEvent:
		e.onAlreadyRegistered(ev)
	case NeedMoreParamsEvent:
		if ev.Command != "" {
			e.status(fmt.Sprintf("%s: %s", ev.Command, ev.Text))
		} else {
			e.status(ev.Text)
		}

	case UnsupportedEvent:
		e.report(relayerrors.NewUnsupportedError(ev.Command, ev.Line))
	case UnknownEvent:
		e.report(relayerrors.NewUnknownError(ev.Command, ev.Line))
	case ParseErrorEvent:
		e.report(relayerrors.NewProtocolParseError(ev.Line, ev.Err))
	}
}

func (e *Engine) onConnected(ev ConnectedEvent) {
	e.mu.Lock()
	if e.phase == PhaseRegistering {
		e.phase = PhaseReady
	}
	if ev.Code == RplWelcome && ev.Target != "" && ev.Target != "*" {
		e.identity.CurrentNick = ev.Target
	}
	nick := e.identity.CurrentNick
	e.mu.Unlock()

	e.logger.Success("Registered as %s", nick)
	e.fire(EngineEvent{Kind: EventConnected, Message: ev.Text})
}

func (e *Engine) onWelcome(ev WelcomeEvent) {
	if ev.Code == RplWelcome && ev.Target != "" && ev.Target != "*" {
		e.mu.Lock()
		e.identity.CurrentNick = ev.Target
		e.mu.Unlock()
	}
	e.status(ev.Text)
}

func (e *Engine) onDisconnected(ev DisconnectedEvent) {
	e.mu.Lock()
	if !e.phase.terminal() {
		e.phase = PhaseIdle
	}
	search := e.activeSearch
	e.activeSearch = nil
	e.mu.Unlock()

	for _, ch := range e.channels.all() {
		ch.setConnected(false)
	}
	if search != nil {
		search.end()
	}
	if ev.Err != nil {
		e.report(ev.Err)
	}
	e.fire(EngineEvent{Kind: EventDisconnected, Err: ev.Err})
}

// modeTakesArg reports whether mode consumes a parameter
func modeTakesArg(mode rune, adding bool) bool {
	switch mode {
	case 'o', 'v', 'h', 'b', 'e', 'I', 'k':
		return true
	case 'l':
		return adding
	default:
		return false
	}
}

func isChannelTarget(target string) bool {
	return target != "" && strings.ContainsRune("#&+!", rune(target[0]))
}

// onMode splits a channel MODE into one event per mode letter
func (e *Engine) onMode(ev ModeEvent) {
	if !isChannelTarget(ev.Target) {
		e.status(fmt.Sprintf("%s sets mode %s on %s", ev.Nick, ev.Modes, ev.Target))
		return
	}

	ch := e.Channel(ev.Target)
	args := ev.Args
	adding := true
	for _, mode := range ev.Modes {
		switch mode {
		case '+':
			adding = true
			continue
		case '-':
			adding = false
			continue
		}

		var arg string
		if modeTakesArg(mode, adding) && len(args) > 0 {
			arg, args = args[0], args[1:]
		}

		out := ChannelEvent{OriginNick: ev.Nick, OriginAddress: ev.Address, SubjectNick: arg}
		switch {
		case mode == 'o' && adding:
			out.Kind = ChannelOp
		case mode == 'o':
			out.Kind = ChannelDeop
		case mode == 'b' && adding:
			out.Kind = ChannelBan
		default:
			out.Kind = ChannelMode
			if adding {
				out.Value = "+" + string(mode)
			} else {
				out.Value = "-" + string(mode)
			}
		}
		ch.notify(out)

		if out.Kind == ChannelBan && e.banMatchesMe(arg) {
			e.dropChannel(ch, fmt.Sprintf("Banned from %s by %s", ch.Target(), ev.Nick))
			return
		}
	}
}

// banMatchesMe reports whether the nick part of a ban mask covers our nick.
// A bare "*" nick part is a host ban and is not taken as ours.
func (e *Engine) banMatchesMe(mask string) bool {
	nickMask := mask
	if i := strings.IndexByte(mask, '!'); i >= 0 {
		nickMask = mask[:i]
	}
	if strings.Trim(nickMask, "*") == "" {
		return false
	}
	return glob.Glob(strings.ToLower(nickMask), strings.ToLower(e.CurrentNick()))
}

// dropChannel removes a channel we were forced out of
func (e *Engine) dropChannel(ch *Channel, reason string) {
	ch.setConnected(false)
	if e.channels.remove(ch) {
		e.fire(EngineEvent{Kind: EventChannelPart, Channel: ch})
	}
	e.status(reason)
}

func (e *Engine) onJoin(ev JoinEvent) {
	ch := e.Channel(ev.Channel)
	if e.isMe(ev.Nick) && !ch.Connected() {
		ch.setConnected(true)
		e.fire(EngineEvent{Kind: EventChannelJoin, Channel: ch})
	}
	ch.notify(ChannelEvent{Kind: ChannelJoin, OriginNick: ev.Nick, OriginAddress: ev.Address})
}

func (e *Engine) onPart(ev PartEvent) {
	if e.isMe(ev.Nick) {
		// Usually the echo of our own PART, after the channel is gone.
		ch := e.LookupChannel(ev.Channel)
		if ch == nil {
			return
		}
		ch.notify(ChannelEvent{Kind: ChannelPart, OriginNick: ev.Nick, OriginAddress: ev.Address, Value: ev.Reason})
		ch.setConnected(false)
		if e.channels.remove(ch) {
			e.fire(EngineEvent{Kind: EventChannelPart, Channel: ch})
		}
		return
	}

	ch := e.Channel(ev.Channel)
	ch.notify(ChannelEvent{Kind: ChannelPart, OriginNick: ev.Nick, OriginAddress: ev.Address, Value: ev.Reason})
}

func (e *Engine) onKick(ev KickEvent) {
	if e.isMe(ev.Kicked) {
		ch := e.LookupChannel(ev.Channel)
		if ch == nil {
			return
		}
		ch.notify(ChannelEvent{Kind: ChannelKick, OriginNick: ev.Nick, OriginAddress: ev.Address, SubjectNick: ev.Kicked, Value: ev.Reason})
		e.dropChannel(ch, fmt.Sprintf("Kicked from %s by %s: %s", ch.Target(), ev.Nick, ev.Reason))
		return
	}

	ch := e.Channel(ev.Channel)
	ch.notify(ChannelEvent{Kind: ChannelKick, OriginNick: ev.Nick, OriginAddress: ev.Address, SubjectNick: ev.Kicked, Value: ev.Reason})
}

func (e *Engine) onWhois(ev WhoisEvent) {
	var msg string
	switch ev.Kind {
	case WhoisUser:
		msg = fmt.Sprintf("%s is %s (%s)", ev.Nick, strings.Join(ev.Fields, " "), ev.Text)
	case WhoisServer:
		msg = fmt.Sprintf("%s is on %s (%s)", ev.Nick, strings.Join(ev.Fields, " "), ev.Text)
	case WhoisOperator:
		msg = fmt.Sprintf("%s %s", ev.Nick, ev.Text)
	case WhoisIdle:
		msg = fmt.Sprintf("%s idle %s", ev.Nick, strings.Join(ev.Fields, " "))
	case WhoisChannels:
		msg = fmt.Sprintf("%s is in %s", ev.Nick, ev.Text)
	case WhoisEnd:
		msg = fmt.Sprintf("End of WHOIS for %s", ev.Nick)
	}
	e.status(msg)
}
