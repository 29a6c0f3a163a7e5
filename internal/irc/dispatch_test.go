package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/relay/internal/ircparse"
)

func dispatchRaw(t *testing.T, raw string) Event {
	t.Helper()
	line, err := ircparse.Parse(raw)
	require.NoError(t, err)
	return Dispatch(line)
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Event
	}{
		{
			name:     "ping",
			raw:      "PING :irc.test",
			expected: PingEvent{Params: []string{"irc.test"}},
		},
		{
			name:     "pong",
			raw:      ":irc.test PONG irc.test :12345",
			expected: PongEvent{Params: []string{"irc.test", "12345"}},
		},
		{
			name:     "privmsg keeps spacing",
			raw:      ":alice!a@host PRIVMSG #test :hello   there",
			expected: MessageEvent{Nick: "alice", Address: "a@host", Target: "#test", Text: "hello   there"},
		},
		{
			name:     "privmsg without colon",
			raw:      ":alice!a@host PRIVMSG #test hello",
			expected: MessageEvent{Nick: "alice", Address: "a@host", Target: "#test", Text: "hello"},
		},
		{
			name:     "action",
			raw:      ":alice!a@host PRIVMSG #test :\x01ACTION waves\x01",
			expected: ActionEvent{Nick: "alice", Address: "a@host", Target: "#test", Text: "waves"},
		},
		{
			name:     "version query",
			raw:      ":alice!a@host PRIVMSG relay :\x01VERSION\x01",
			expected: ClientQueryEvent{Nick: "alice", Address: "a@host", Target: "relay", Query: "VERSION"},
		},
		{
			name:     "other ctcp",
			raw:      ":alice!a@host PRIVMSG relay :\x01PING 123\x01",
			expected: CTCPEvent{Nick: "alice", Target: "relay", Command: "PING", Args: "123"},
		},
		{
			name:     "notice",
			raw:      ":NickServ!s@services NOTICE relay :This nickname is registered",
			expected: NoticeEvent{Nick: "NickServ", Address: "s@services", Target: "relay", Text: "This nickname is registered"},
		},
		{
			name:     "version reply",
			raw:      ":alice!a@host NOTICE relay :\x01VERSION irssi 1.4\x01",
			expected: VersionReplyEvent{Nick: "alice", Version: "irssi 1.4"},
		},
		{
			name:     "mode",
			raw:      ":op!o@h MODE #test +ov alice bob",
			expected: ModeEvent{Nick: "op", Address: "o@h", Target: "#test", Modes: "+ov", Args: []string{"alice", "bob"}},
		},
		{
			name:     "join with colon",
			raw:      ":alice!a@h JOIN :#test",
			expected: JoinEvent{Nick: "alice", Address: "a@h", Channel: "#test"},
		},
		{
			name:     "part with reason",
			raw:      ":alice!a@h PART #test :gone fishing",
			expected: PartEvent{Nick: "alice", Address: "a@h", Channel: "#test", Reason: "gone fishing"},
		},
		{
			name:     "kick",
			raw:      ":op!o@h KICK #test alice :no spam",
			expected: KickEvent{Nick: "op", Address: "o@h", Channel: "#test", Kicked: "alice", Reason: "no spam"},
		},
		{
			name:     "quit",
			raw:      ":alice!a@h QUIT :Ping timeout",
			expected: QuitEvent{Nick: "alice", Address: "a@h", Reason: "Ping timeout"},
		},
		{
			name:     "nick",
			raw:      ":alice!a@h NICK :alicia",
			expected: NickEvent{Nick: "alice", Address: "a@h", NewNick: "alicia"},
		},
		{
			name:     "topic",
			raw:      ":alice!a@h TOPIC #test :fresh topic",
			expected: TopicEvent{Nick: "alice", Channel: "#test", Topic: "fresh topic"},
		},
		{
			name:     "error",
			raw:      "ERROR :Closing Link: relay (Quit)",
			expected: ServerErrorEvent{Text: "Closing Link: relay (Quit)"},
		},
		{
			name:     "welcome",
			raw:      ":irc.test 001 relay :Welcome to the network",
			expected: WelcomeEvent{Code: RplWelcome, Target: "relay", Text: "Welcome to the network"},
		},
		{
			name:     "no motd is welcome class",
			raw:      ":irc.test 422 relay :MOTD File is missing",
			expected: WelcomeEvent{Code: ErrNoMotd, Target: "relay", Text: "MOTD File is missing"},
		},
		{
			name:     "motd start",
			raw:      ":irc.test 375 relay :- irc.test Message of the day -",
			expected: MotdEvent{Kind: MotdStart, Text: "- irc.test Message of the day -"},
		},
		{
			name:     "list item",
			raw:      ":irc.test 322 relay #golang 42 :Go talk",
			expected: ListItemEvent{Channel: "#golang", Users: 42, Topic: "Go talk"},
		},
		{
			name:     "list start",
			raw:      ":irc.test 321 relay Channel :Users  Name",
			expected: ListStartEvent{},
		},
		{
			name:     "list end",
			raw:      ":irc.test 323 relay :End of /LIST",
			expected: ListEndEvent{},
		},
		{
			name:     "whois user",
			raw:      ":irc.test 311 relay alice a host * :Alice Doe",
			expected: WhoisEvent{Kind: WhoisUser, Nick: "alice", Fields: []string{"a", "host", "*"}, Text: "Alice Doe"},
		},
		{
			name:     "nick in use",
			raw:      ":irc.test 433 * relay :Nickname is already in use",
			expected: NickRejectedEvent{Code: ErrNicknameInUse, Nick: "relay", Text: "Nickname is already in use"},
		},
		{
			name:     "already registered",
			raw:      ":irc.test 462 relay :You may not reregister",
			expected: AlreadyRegisteredEvent{Line: ":irc.test 462 relay :You may not reregister"},
		},
		{
			name:     "need more params",
			raw:      ":irc.test 461 relay JOIN :Not enough parameters",
			expected: NeedMoreParamsEvent{Code: ErrNeedMoreParams, Command: "JOIN", Text: "Not enough parameters"},
		},
		{
			name:     "luser client",
			raw:      ":irc.test 251 relay :There are 3 users on 1 server",
			expected: ServerInfoEvent{Code: RplLuserClient, Text: "There are 3 users on 1 server"},
		},
		{
			name:     "channel count",
			raw:      ":irc.test 254 relay 1234 :channels formed",
			expected: ChannelCountEvent{Count: 1234},
		},
		{
			name:     "topic reply",
			raw:      ":irc.test 332 relay #test :The topic",
			expected: TopicEvent{Channel: "#test", Topic: "The topic"},
		},
		{
			name:     "names",
			raw:      ":irc.test 353 relay = #test :relay @alice",
			expected: NamesEvent{Channel: "#test", Names: []string{"relay", "@alice"}},
		},
		{
			name:     "unsupported numeric",
			raw:      ":irc.test 366 relay #test :End of /NAMES list",
			expected: UnsupportedEvent{Command: "366", Line: ":irc.test 366 relay #test :End of /NAMES list"},
		},
		{
			name:     "unknown numeric",
			raw:      ":irc.test 999 relay :what",
			expected: UnknownEvent{Command: "999", Line: ":irc.test 999 relay :what"},
		},
		{
			name:     "unknown command",
			raw:      ":irc.test WALLOPS :hello",
			expected: UnknownEvent{Command: "WALLOPS", Line: ":irc.test WALLOPS :hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, dispatchRaw(t, tt.raw))
		})
	}
}

func TestDispatch_EmptyLine(t *testing.T) {
	assert.Nil(t, dispatchRaw(t, ""))
	assert.Nil(t, dispatchRaw(t, "   "))
}

func TestDispatch_MissingTokensBecomeParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"privmsg without text", ":alice!a@h PRIVMSG #test"},
		{"kick without nick", ":op!o@h KICK #test"},
		{"join without channel", ":alice!a@h JOIN"},
		{"list item with bad count", ":irc.test 322 relay #test many :topic"},
		{"channel count not a number", ":irc.test 254 relay lots :channels"},
		{"welcome without target", ":irc.test 001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := dispatchRaw(t, tt.raw)
			parseErr, ok := ev.(ParseErrorEvent)
			require.True(t, ok, "got %T", ev)
			assert.Equal(t, tt.raw, parseErr.Line)

			var target *ircparse.ParseError
			assert.ErrorAs(t, parseErr.Err, &target)
		})
	}
}

func TestWelcomeClass(t *testing.T) {
	for _, code := range []int{RplWelcome, RplYourHost, RplCreated, RplMyInfo, ErrNoMotd} {
		assert.True(t, isWelcomeClass(code), "%d", code)
	}
	assert.False(t, isWelcomeClass(RplMotdStart))
	assert.False(t, isWelcomeClass(RplEndOfMotd))
}
