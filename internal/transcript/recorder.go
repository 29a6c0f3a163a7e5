// Package transcript writes what happens in the engine's channels to the
// database.
package transcript

import (
	"sync"

	"github.com/yourusername/relay/internal/database"
	"github.com/yourusername/relay/internal/irc"
	"github.com/yourusername/relay/internal/output"
)

// eventTypes maps channel events to stored event types
var eventTypes = map[irc.ChannelEventKind]string{
	irc.ChannelMessage: database.EventTypeMessage,
	irc.ChannelAction:  database.EventTypeAction,
	irc.ChannelJoin:    database.EventTypeJoin,
	irc.ChannelPart:    database.EventTypePart,
	irc.ChannelKick:    database.EventTypeKick,
	irc.ChannelBan:     database.EventTypeBan,
	irc.ChannelOp:      database.EventTypeMode,
	irc.ChannelDeop:    database.EventTypeMode,
	irc.ChannelMode:    database.EventTypeMode,
	irc.ChannelNick:    database.EventTypeNick,
	irc.ChannelTopic:   database.EventTypeTopic,
	irc.ChannelQuit:    database.EventTypeQuit,
}

// Recorder stores channel events. It is an irc.ChannelListener.
type Recorder struct {
	db        *database.DB
	sessionID func() string
	logger    output.Logger
}

// NewRecorder creates a recorder stamping rows with sessionID()
func NewRecorder(db *database.DB, sessionID func() string, logger output.Logger) *Recorder {
	return &Recorder{db: db, sessionID: sessionID, logger: logger}
}

// Attach records every channel engine has now or creates later
func (r *Recorder) Attach(engine *irc.Engine) (detach func()) {
	var mu sync.Mutex
	var removers []func()
	track := func(remove func()) {
		mu.Lock()
		removers = append(removers, remove)
		mu.Unlock()
	}

	for _, ch := range engine.Channels() {
		track(ch.AddListener(r))
	}
	track(engine.AddListener(irc.EngineListenerFunc(func(ev irc.EngineEvent) {
		if ev.Kind == irc.EventChannelAvailable {
			track(ev.Channel.AddListener(r))
		}
	})))

	return func() {
		mu.Lock()
		defer mu.Unlock()
		for _, remove := range removers {
			remove()
		}
	}
}

// HandleChannelEvent stores ev. Name lists are not stored.
func (r *Recorder) HandleChannelEvent(ev irc.ChannelEvent) {
	eventType, ok := eventTypes[ev.Kind]
	if !ok {
		return
	}

	msg := &database.Message{
		SessionID: r.sessionID(),
		Channel:   ev.Channel.Target(),
		Nick:      ev.OriginNick,
		Hostmask:  ev.OriginAddress,
		Content:   content(ev),
		EventType: eventType,
	}
	if err := r.db.LogMessage(msg); err != nil {
		r.logger.Warning("Transcript: %v", err)
	}
}

// content is the text stored for an event
func content(ev irc.ChannelEvent) string {
	switch ev.Kind {
	case irc.ChannelOp:
		return "+o " + ev.SubjectNick
	case irc.ChannelDeop:
		return "-o " + ev.SubjectNick
	case irc.ChannelMode:
		if ev.SubjectNick != "" {
			return ev.Value + " " + ev.SubjectNick
		}
		return ev.Value
	case irc.ChannelBan, irc.ChannelNick:
		return ev.SubjectNick
	case irc.ChannelKick:
		if ev.Value != "" {
			return ev.SubjectNick + " " + ev.Value
		}
		return ev.SubjectNick
	default:
		return ev.Value
	}
}

// SaveSearch stores the results of a finished search
func (r *Recorder) SaveSearch(search *irc.ChannelSearch) (string, error) {
	found := search.Results()
	results := make([]database.SearchResult, 0, len(found))
	for _, ch := range found {
		results = append(results, database.SearchResult{
			Channel: ch.Target(),
			Users:   ch.UserCount(),
			Topic:   ch.Topic(),
		})
	}
	return r.db.SaveSearchResults(r.sessionID(), results)
}
