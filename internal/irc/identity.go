package irc

import (
	"fmt"

	relayerrors "github.com/yourusername/relay/internal/errors"
)

// register starts a new session: reset the identity and send NICK and USER
func (e *Engine) register(ev LinkEvent) {
	e.mu.Lock()
	e.phase = PhaseRegistering
	e.altTried = false
	e.identity.CurrentNick = e.identity.PrimaryNick
	id := e.identity
	e.mu.Unlock()

	e.logger.Info("Registering as %s (session %s)", id.PrimaryNick, ev.SessionID)
	e.Send("NICK", id.PrimaryNick)
	e.Send("USER", id.UserName, "0", "*", id.FullName)
	e.status("Connected to " + ev.Addr)
}

// onNickRejected tries the alternate nick once during registration. A
// second rejection ends the session.
func (e *Engine) onNickRejected(ev NickRejectedEvent) {
	e.mu.Lock()
	if e.phase != PhaseRegistering {
		e.mu.Unlock()
		e.status(fmt.Sprintf("Nickname %s rejected: %s", ev.Nick, ev.Text))
		return
	}

	primary, alt := e.identity.PrimaryNick, e.identity.AlternateNick
	if !e.altTried {
		e.altTried = true
		e.identity.CurrentNick = alt
		e.mu.Unlock()

		e.logger.Warning("Nickname %s is unavailable (%d), trying %s", primary, ev.Code, alt)
		e.status(fmt.Sprintf("Nickname %s is unavailable, trying %s", primary, alt))
		e.Send("NICK", alt)
		return
	}

	e.phase = PhaseNickExhausted
	e.mu.Unlock()

	e.report(relayerrors.NewIdentityCollisionError(primary, alt))
	e.conn.shutdown("")
}

// onAlreadyRegistered ends a session the server says is registered twice
func (e *Engine) onAlreadyRegistered(ev AlreadyRegisteredEvent) {
	e.mu.Lock()
	e.phase = PhaseAlreadyRegistered
	e.mu.Unlock()

	e.report(relayerrors.NewAlreadyRegisteredError(ev.Line))
	e.conn.shutdown("")
}

// onNick follows our own nick changes and tells every channel
func (e *Engine) onNick(ev NickEvent) {
	if e.isMe(ev.Nick) {
		e.mu.Lock()
		e.identity.CurrentNick = ev.NewNick
		e.mu.Unlock()
		e.status(fmt.Sprintf("You are now known as %s", ev.NewNick))
	}

	for _, ch := range e.channels.all() {
		ch.notify(ChannelEvent{Kind: ChannelNick, OriginNick: ev.Nick, OriginAddress: ev.Address, SubjectNick: ev.NewNick})
	}
}
