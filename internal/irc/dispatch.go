package irc

import (
	"strings"

	"github.com/yourusername/relay/internal/ircparse"
)

type lineHandler func(line ircparse.Line) (Event, error)

// commandHandlers maps textual commands to their decoders
var commandHandlers = map[string]lineHandler{
	"PING":    dispatchPing,
	"PONG":    dispatchPong,
	"PRIVMSG": dispatchPrivmsg,
	"NOTICE":  dispatchNotice,
	"MODE":    dispatchMode,
	"JOIN":    dispatchJoin,
	"PART":    dispatchPart,
	"KICK":    dispatchKick,
	"QUIT":    dispatchQuit,
	"NICK":    dispatchNick,
	"TOPIC":   dispatchTopic,
	"ERROR":   dispatchError,
}

// numericHandlers maps reply codes to their decoders
var numericHandlers = map[int]lineHandler{
	RplWelcome:           dispatchWelcome,
	RplYourHost:          dispatchWelcome,
	RplCreated:           dispatchWelcome,
	RplMyInfo:            dispatchWelcome,
	ErrNoMotd:            dispatchWelcome,
	RplMotdStart:         dispatchMotd(MotdStart),
	RplMotd:              dispatchMotd(MotdLine),
	RplEndOfMotd:         dispatchMotd(MotdEnd),
	RplListStart:         dispatchListStart,
	RplList:              dispatchListItem,
	RplListEnd:           dispatchListEnd,
	RplWhoisUser:         dispatchWhois(WhoisUser),
	RplWhoisServer:       dispatchWhois(WhoisServer),
	RplWhoisOperator:     dispatchWhois(WhoisOperator),
	RplWhoisIdle:         dispatchWhois(WhoisIdle),
	RplEndOfWhois:        dispatchWhois(WhoisEnd),
	RplWhoisChannels:     dispatchWhois(WhoisChannels),
	ErrErroneusNickname:  dispatchNickRejected,
	ErrNicknameInUse:     dispatchNickRejected,
	ErrNickCollision:     dispatchNickRejected,
	ErrAlreadyRegistered: dispatchAlreadyRegistered,
	ErrNeedMoreParams:    dispatchNeedMoreParams,
	ErrNoNicknameGiven:   dispatchNeedMoreParams,
	RplLuserClient:       dispatchServerInfo,
	RplVersion:           dispatchServerInfo,
	RplLuserChannels:     dispatchChannelCount,
	RplTopic:             dispatchTopicReply,
	RplNamReply:          dispatchNames,
}

// Dispatch turns a parsed line into exactly one Event. Empty lines yield
// nil. A known command that lacks the tokens it needs becomes a
// ParseErrorEvent; nothing here is fatal.
func Dispatch(line ircparse.Line) Event {
	if line.IsEmpty() {
		return nil
	}

	var handler lineHandler
	if code, ok := line.Numeric(); ok {
		handler = numericHandlers[code]
		if handler == nil {
			if unsupportedNumerics[code] {
				return UnsupportedEvent{Command: line.Command, Line: line.Raw}
			}
			return UnknownEvent{Command: line.Command, Line: line.Raw}
		}
	} else {
		handler = commandHandlers[strings.ToUpper(line.Command)]
		if handler == nil {
			return UnknownEvent{Command: line.Command, Line: line.Raw}
		}
	}

	ev, err := handler(line)
	if err != nil {
		return ParseErrorEvent{Line: line.Raw, Err: err}
	}
	return ev
}

// optionalRest returns Rest(i), or "" if the line stops before i
func optionalRest(line ircparse.Line, i int) string {
	if i >= len(line.Params) {
		return ""
	}
	rest, _ := line.Rest(i)
	return rest
}

// replyText returns the free text of a numeric reply: the trailing
// parameter if there is one, else everything after the target
func replyText(line ircparse.Line) string {
	if text, ok := line.TrailingText(); ok {
		return text
	}
	return optionalRest(line, 1)
}

func dispatchPing(line ircparse.Line) (Event, error) {
	return PingEvent{Params: line.Args()}, nil
}

func dispatchPong(line ircparse.Line) (Event, error) {
	return PongEvent{Params: line.Args()}, nil
}

func dispatchPrivmsg(line ircparse.Line) (Event, error) {
	if err := line.Require(2); err != nil {
		return nil, err
	}
	target := line.Params[0].Text
	text, _ := line.Rest(1)

	if command, args, ok := ParseCTCPMessage(text); ok {
		switch command {
		case "ACTION":
			return ActionEvent{Nick: line.OriginNick, Address: line.OriginAddress, Target: target, Text: args}, nil
		case "VERSION", "SOURCE", "CLIENTINFO":
			return ClientQueryEvent{Nick: line.OriginNick, Address: line.OriginAddress, Target: target, Query: command}, nil
		default:
			return CTCPEvent{Nick: line.OriginNick, Target: target, Command: command, Args: args}, nil
		}
	}

	return MessageEvent{Nick: line.OriginNick, Address: line.OriginAddress, Target: target, Text: text}, nil
}

func dispatchNotice(line ircparse.Line) (Event, error) {
	if err := line.Require(2); err != nil {
		return nil, err
	}
	target := line.Params[0].Text
	text, _ := line.Rest(1)

	if command, args, ok := ParseCTCPMessage(text); ok && command == "VERSION" {
		return VersionReplyEvent{Nick: line.OriginNick, Version: args}, nil
	}

	return NoticeEvent{Nick: line.OriginNick, Address: line.OriginAddress, Target: target, Text: text}, nil
}

func dispatchMode(line ircparse.Line) (Event, error) {
	if err := line.Require(2); err != nil {
		return nil, err
	}
	args := line.Args()
	return ModeEvent{
		Nick:    line.OriginNick,
		Address: line.OriginAddress,
		Target:  args[0],
		Modes:   args[1],
		Args:    args[2:],
	}, nil
}

func dispatchJoin(line ircparse.Line) (Event, error) {
	channel, err := line.Param(0)
	if err != nil {
		return nil, err
	}
	return JoinEvent{Nick: line.OriginNick, Address: line.OriginAddress, Channel: channel}, nil
}

func dispatchPart(line ircparse.Line) (Event, error) {
	channel, err := line.Param(0)
	if err != nil {
		return nil, err
	}
	return PartEvent{
		Nick:    line.OriginNick,
		Address: line.OriginAddress,
		Channel: channel,
		Reason:  optionalRest(line, 1),
	}, nil
}

func dispatchKick(line ircparse.Line) (Event, error) {
	if err := line.Require(2); err != nil {
		return nil, err
	}
	return KickEvent{
		Nick:    line.OriginNick,
		Address: line.OriginAddress,
		Channel: line.Params[0].Text,
		Kicked:  line.Params[1].Text,
		Reason:  optionalRest(line, 2),
	}, nil
}

func dispatchQuit(line ircparse.Line) (Event, error) {
	return QuitEvent{Nick: line.OriginNick, Address: line.OriginAddress, Reason: optionalRest(line, 0)}, nil
}

func dispatchNick(line ircparse.Line) (Event, error) {
	newNick, err := line.Param(0)
	if err != nil {
		return nil, err
	}
	return NickEvent{Nick: line.OriginNick, Address: line.OriginAddress, NewNick: newNick}, nil
}

func dispatchTopic(line ircparse.Line) (Event, error) {
	channel, err := line.Param(0)
	if err != nil {
		return nil, err
	}
	return TopicEvent{Nick: line.OriginNick, Channel: channel, Topic: optionalRest(line, 1)}, nil
}

func dispatchError(line ircparse.Line) (Event, error) {
	return ServerErrorEvent{Text: optionalRest(line, 0)}, nil
}

func dispatchWelcome(line ircparse.Line) (Event, error) {
	target, err := line.Param(0)
	if err != nil {
		return nil, err
	}
	code, _ := line.Numeric()
	return WelcomeEvent{Code: code, Target: target, Text: replyText(line)}, nil
}

func dispatchMotd(kind MotdKind) lineHandler {
	return func(line ircparse.Line) (Event, error) {
		return MotdEvent{Kind: kind, Text: replyText(line)}, nil
	}
}

func dispatchListStart(ircparse.Line) (Event, error) {
	return ListStartEvent{}, nil
}

// dispatchListItem decodes ":srv 322 me #chan 42 :topic"
func dispatchListItem(line ircparse.Line) (Event, error) {
	if err := line.Require(3); err != nil {
		return nil, err
	}
	users, err := line.Int(2)
	if err != nil {
		return nil, err
	}
	return ListItemEvent{
		Channel: line.Params[1].Text,
		Users:   users,
		Topic:   optionalRest(line, 3),
	}, nil
}

func dispatchListEnd(ircparse.Line) (Event, error) {
	return ListEndEvent{}, nil
}

// dispatchWhois decodes ":srv 3xx me nick [fields...] :text"
func dispatchWhois(kind WhoisKind) lineHandler {
	return func(line ircparse.Line) (Event, error) {
		nick, err := line.Param(1)
		if err != nil {
			return nil, err
		}
		positional := line.Positional()
		var fields []string
		if len(positional) > 2 {
			fields = positional[2:]
		}
		text, _ := line.TrailingText()
		return WhoisEvent{Kind: kind, Nick: nick, Fields: fields, Text: text}, nil
	}
}

// dispatchNickRejected decodes ":srv 433 * nick :Nickname is already in use".
// Some servers omit the nick, so only the code is required.
func dispatchNickRejected(line ircparse.Line) (Event, error) {
	code, _ := line.Numeric()
	ev := NickRejectedEvent{Code: code}
	positional := line.Positional()
	if len(positional) > 1 {
		ev.Nick = positional[1]
	}
	ev.Text, _ = line.TrailingText()
	return ev, nil
}

func dispatchAlreadyRegistered(line ircparse.Line) (Event, error) {
	return AlreadyRegisteredEvent{Line: line.Raw}, nil
}

func dispatchNeedMoreParams(line ircparse.Line) (Event, error) {
	code, _ := line.Numeric()
	ev := NeedMoreParamsEvent{Code: code}
	positional := line.Positional()
	if code == ErrNeedMoreParams && len(positional) > 1 {
		ev.Command = positional[1]
	}
	ev.Text, _ = line.TrailingText()
	return ev, nil
}

func dispatchServerInfo(line ircparse.Line) (Event, error) {
	code, _ := line.Numeric()
	args := line.Args()
	if len(args) > 0 {
		args = args[1:]
	}
	return ServerInfoEvent{Code: code, Text: strings.Join(args, " ")}, nil
}

// dispatchChannelCount decodes ":srv 254 me 1234 :channels formed"
func dispatchChannelCount(line ircparse.Line) (Event, error) {
	count, err := line.Int(1)
	if err != nil {
		return nil, err
	}
	return ChannelCountEvent{Count: count}, nil
}

// dispatchTopicReply decodes ":srv 332 me #chan :topic"
func dispatchTopicReply(line ircparse.Line) (Event, error) {
	if err := line.Require(3); err != nil {
		return nil, err
	}
	topic, _ := line.Rest(2)
	return TopicEvent{Channel: line.Params[1].Text, Topic: topic}, nil
}

// dispatchNames decodes ":srv 353 me = #chan :a @b +c". The channel type
// token is missing on some servers, so the channel is taken as the
// parameter before the name list.
func dispatchNames(line ircparse.Line) (Event, error) {
	if err := line.Require(3); err != nil {
		return nil, err
	}
	n := len(line.Params)
	return NamesEvent{
		Channel: line.Params[n-2].Text,
		Names:   strings.Fields(line.Params[n-1].Text),
	}, nil
}
