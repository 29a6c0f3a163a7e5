package irc

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/ryanuber/go-glob"

	relayerrors "github.com/yourusername/relay/internal/errors"
)

// ErrSearchActive is returned by Start while another search is running
var ErrSearchActive = errors.New("a channel search is already active")

const (
	// NoMinUsers disables the lower user bound
	NoMinUsers = math.MinInt
	// NoMaxUsers disables the upper user bound
	NoMaxUsers = math.MaxInt
)

// SearchCriteria filters LIST replies. Both bounds are exclusive; a zero
// bound means no bound on that side. NamePattern is a case-insensitive glob
// where only '*' is special; empty matches everything.
type SearchCriteria struct {
	NamePattern string
	MinUsers    int
	MaxUsers    int
}

func (c SearchCriteria) lower() int {
	if c.MinUsers == 0 {
		return NoMinUsers
	}
	return c.MinUsers
}

func (c SearchCriteria) upper() int {
	if c.MaxUsers == 0 {
		return NoMaxUsers
	}
	return c.MaxUsers
}

func (c SearchCriteria) matches(name string, users int) bool {
	if users <= c.lower() || users >= c.upper() {
		return false
	}
	if c.NamePattern == "" {
		return true
	}
	pattern := strings.ToLower(c.NamePattern)
	return glob.Glob(pattern, NormalizeChannelName(name)) || glob.Glob(pattern, strings.ToLower(name))
}

// listArgs returns the ELIST bounds for LIST, if any
func (c SearchCriteria) listArgs() []string {
	var bounds []string
	if upper := c.upper(); upper != NoMaxUsers {
		bounds = append(bounds, fmt.Sprintf("<%d", upper))
	}
	if c.MinUsers > 0 {
		bounds = append(bounds, fmt.Sprintf(">%d", c.MinUsers))
	}
	if len(bounds) == 0 {
		return nil
	}
	return []string{strings.Join(bounds, ",")}
}

// SearchListener follows one ChannelSearch
type SearchListener interface {
	SearchStarted(total int)
	SearchFound(ch *Channel)
	SearchEnded()
}

// SearchFuncs adapts optional funcs to SearchListener
type SearchFuncs struct {
	Started func(total int)
	Found   func(ch *Channel)
	Ended   func()
}

// SearchStarted calls Started if set
func (f SearchFuncs) SearchStarted(total int) {
	if f.Started != nil {
		f.Started(total)
	}
}

// SearchFound calls Found if set
func (f SearchFuncs) SearchFound(ch *Channel) {
	if f.Found != nil {
		f.Found(ch)
	}
}

// SearchEnded calls Ended if set
func (f SearchFuncs) SearchEnded() {
	if f.Ended != nil {
		f.Ended()
	}
}

// ChannelSearch runs a LIST and collects the channels that pass its
// criteria. Found channels are not registered with the engine; joining one
// registers it.
type ChannelSearch struct {
	engine   *Engine
	criteria SearchCriteria

	mu       sync.Mutex
	results  []*Channel
	complete bool
	total    int

	listeners listenerSet[SearchListener]
}

// NewChannelSearch prepares a search. Nothing is sent until Start.
func (e *Engine) NewChannelSearch(criteria SearchCriteria) *ChannelSearch {
	return &ChannelSearch{engine: e, criteria: criteria}
}

// Start makes this the engine's active search and sends LIST. It fails
// with ErrSearchActive while any search, this one included, has not ended.
func (s *ChannelSearch) Start() error {
	e := s.engine

	e.mu.Lock()
	if e.activeSearch != nil {
		e.mu.Unlock()
		e.report(relayerrors.NewSearchError(ErrSearchActive))
		return ErrSearchActive
	}
	e.activeSearch = s
	e.mu.Unlock()

	s.mu.Lock()
	s.results = nil
	s.complete = false
	s.total = 0
	s.mu.Unlock()

	e.logger.Info("Searching channels %s", s.describe())
	e.Send("LIST", s.criteria.listArgs()...)
	return nil
}

func (s *ChannelSearch) describe() string {
	var parts []string
	if s.criteria.NamePattern != "" {
		parts = append(parts, "matching "+s.criteria.NamePattern)
	}
	if s.criteria.MinUsers > 0 {
		parts = append(parts, fmt.Sprintf("with more than %d users", s.criteria.MinUsers))
	}
	if upper := s.criteria.upper(); upper != NoMaxUsers {
		parts = append(parts, fmt.Sprintf("with fewer than %d users", upper))
	}
	if len(parts) == 0 {
		return "(all)"
	}
	return strings.Join(parts, ", ")
}

// Criteria returns the filters the search was created with
func (s *ChannelSearch) Criteria() SearchCriteria {
	return s.criteria
}

// Results returns the matches so far
func (s *ChannelSearch) Results() []*Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Channel, len(s.results))
	copy(out, s.results)
	return out
}

// Complete reports whether the server has ended the listing
func (s *ChannelSearch) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Total is the server's channel count when the listing started
func (s *ChannelSearch) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// AddListener registers l and returns a func that removes it again
func (s *ChannelSearch) AddListener(l SearchListener) (remove func()) {
	return s.listeners.add(l)
}

func (s *ChannelSearch) started(total int) {
	s.mu.Lock()
	s.total = total
	s.mu.Unlock()

	for _, l := range s.listeners.snapshot() {
		l.SearchStarted(total)
	}
}

func (s *ChannelSearch) offer(ev ListItemEvent) {
	if !s.criteria.matches(ev.Channel, ev.Users) {
		return
	}

	ch := newChannel(ev.Channel, false, s.engine)
	ch.setUserCount(ev.Users)
	ch.setTopic(ev.Topic)

	s.mu.Lock()
	s.results = append(s.results, ch)
	s.mu.Unlock()

	for _, l := range s.listeners.snapshot() {
		l.SearchFound(ch)
	}
}

func (s *ChannelSearch) end() {
	s.mu.Lock()
	s.complete = true
	s.mu.Unlock()

	for _, l := range s.listeners.snapshot() {
		l.SearchEnded()
	}
}

func (e *Engine) currentSearch() *ChannelSearch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeSearch
}

func (e *Engine) onListStart() {
	s := e.currentSearch()
	if s == nil {
		return
	}

	e.mu.Lock()
	total := e.channelCount
	e.mu.Unlock()
	s.started(total)
}

// onListItem drops items that arrive with no search running
func (e *Engine) onListItem(ev ListItemEvent) {
	if s := e.currentSearch(); s != nil {
		s.offer(ev)
	}
}

func (e *Engine) onListEnd() {
	e.mu.Lock()
	s := e.activeSearch
	e.activeSearch = nil
	e.mu.Unlock()

	if s == nil {
		return
	}
	e.logger.Info("Channel search finished with %d results", len(s.Results()))
	s.end()
}
