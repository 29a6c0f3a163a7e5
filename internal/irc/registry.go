package irc

import (
	"sort"
	"strings"
	"sync"
)

type channelKey struct {
	name    string
	private bool
}

// registry owns the engine's channels. Every lookup normalizes the name,
// so each conversation has exactly one *Channel.
type registry struct {
	mu       sync.RWMutex
	channels map[channelKey]*Channel
}

func newRegistry() *registry {
	return &registry{channels: make(map[channelKey]*Channel)}
}

func keyFor(name string, private bool) channelKey {
	if private {
		return channelKey{name: strings.ToLower(strings.TrimSpace(name)), private: true}
	}
	return channelKey{name: NormalizeChannelName(name)}
}

// get returns the channel, or nil if it is not registered
func (r *registry) get(name string, private bool) *Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels[keyFor(name, private)]
}

// getOrCreate returns the registered channel, creating it on first use.
// created is true only for the call that created it.
func (r *registry) getOrCreate(name string, private bool, commander Commander) (ch *Channel, created bool) {
	key := keyFor(name, private)

	r.mu.RLock()
	ch = r.channels[key]
	r.mu.RUnlock()
	if ch != nil {
		return ch, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ch = r.channels[key]; ch != nil {
		return ch, false
	}
	ch = newChannel(name, private, commander)
	r.channels[key] = ch
	return ch, true
}

// adopt registers a channel built outside the registry. If one with the
// same name is already registered that one wins and is returned.
func (r *registry) adopt(ch *Channel, commander Commander) (*Channel, bool) {
	key := channelKey{name: ch.key, private: ch.private}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.channels[key]; existing != nil {
		return existing, false
	}
	if ch.commander == nil {
		ch.commander = commander
	}
	r.channels[key] = ch
	return ch, true
}

// remove drops ch if it is the registered channel for its name
func (r *registry) remove(ch *Channel) bool {
	key := channelKey{name: ch.key, private: ch.private}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channels[key] != ch {
		return false
	}
	delete(r.channels, key)
	return true
}

// all returns every registered channel sorted by name
func (r *registry) all() []*Channel {
	r.mu.RLock()
	out := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, ch)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}
