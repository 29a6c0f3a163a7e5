package main

import (
	"strings"

	"github.com/yourusername/relay/internal/irc"
	"github.com/yourusername/relay/internal/ircformat"
	"github.com/yourusername/relay/internal/output"
)

// console prints channel traffic to the terminal with formatting codes
// stripped
type console struct {
	logger output.Logger
}

// attachConsole prints every channel the engine creates
func attachConsole(engine *irc.Engine, logger output.Logger) {
	c := &console{logger: logger}
	for _, ch := range engine.Channels() {
		ch.AddListener(c)
	}
	engine.AddListener(irc.EngineListenerFunc(func(ev irc.EngineEvent) {
		switch ev.Kind {
		case irc.EventChannelAvailable:
			ev.Channel.AddListener(c)
		case irc.EventChannelJoin:
			logger.Success("Joined %s", ev.Channel.Target())
		case irc.EventChannelPart:
			logger.Info("Left %s", ev.Channel.Target())
		}
	}))
}

func (c *console) HandleChannelEvent(ev irc.ChannelEvent) {
	target := ev.Channel.Target()
	value := ircformat.Strip(ev.Value)
	switch ev.Kind {
	case irc.ChannelMessage:
		if ev.Channel.IsPrivate() {
			c.logger.PrivateMessage(ev.OriginNick, value)
			return
		}
		c.logger.ChannelMessage(target, ev.OriginNick, value)
	case irc.ChannelAction:
		c.logger.ChannelAction(target, ev.OriginNick, value)
	case irc.ChannelJoin:
		c.logger.Info("%s: %s (%s) joined", target, ev.OriginNick, ev.OriginAddress)
	case irc.ChannelPart:
		c.logger.Info("%s: %s left %s", target, ev.OriginNick, value)
	case irc.ChannelKick:
		c.logger.Info("%s: %s kicked %s (%s)", target, ev.OriginNick, ev.SubjectNick, value)
	case irc.ChannelBan:
		c.logger.Info("%s: %s banned %s", target, ev.OriginNick, ev.SubjectNick)
	case irc.ChannelOp:
		c.logger.Info("%s: %s gives op to %s", target, ev.OriginNick, ev.SubjectNick)
	case irc.ChannelDeop:
		c.logger.Info("%s: %s removes op from %s", target, ev.OriginNick, ev.SubjectNick)
	case irc.ChannelMode:
		c.logger.Info("%s: %s sets mode %s %s", target, ev.OriginNick, value, ev.SubjectNick)
	case irc.ChannelNick:
		c.logger.Info("%s: %s is now known as %s", target, ev.OriginNick, ev.SubjectNick)
	case irc.ChannelTopic:
		c.logger.Info("%s: topic is %q", target, value)
	case irc.ChannelQuit:
		c.logger.Info("%s: %s quit (%s)", target, ev.OriginNick, value)
	case irc.ChannelNames:
		c.logger.Info("%s: users %s", target, strings.Join(ev.Names, " "))
	}
}
