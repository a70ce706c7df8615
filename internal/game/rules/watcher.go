package rules

import (
	"sync"
)

// WatcherScope says what a watcher is attached to.
type WatcherScope int

const (
	// WatcherScopeGame watches the whole match.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopePlayer watches a single player.
	WatcherScopePlayer
	// WatcherScopeCard watches a single card instance.
	WatcherScopeCard
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopePlayer:
		return "PLAYER"
	case WatcherScopeCard:
		return "CARD"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes game events and tracks a derived condition, such as
// "this player drew more than once this turn". Watchers never mutate
// game state.
type Watcher interface {
	// Watch is called for every published event.
	Watch(event Event)

	// Reset clears per-turn state (called at end of turn).
	Reset()

	// ConditionMet returns true if the tracked condition currently holds.
	ConditionMet() bool

	// GetScope reports what the watcher is attached to.
	GetScope() WatcherScope

	// GetKey returns the key the watcher is registered under.
	GetKey() string

	// Copy creates an independent copy of this watcher.
	Copy() Watcher
}

// BaseWatcher carries the bookkeeping shared by concrete watchers:
// registry key, scope, owner identity and the tracked condition flag.
type BaseWatcher struct {
	key          string
	scope        WatcherScope
	controllerID string
	sourceID     string
	condition    bool
}

// NewBaseWatcher creates a base watcher with the given scope.
func NewBaseWatcher(scope WatcherScope) *BaseWatcher {
	return &BaseWatcher{scope: scope}
}

// GetKey returns the registry key.
func (bw *BaseWatcher) GetKey() string {
	return bw.key
}

// SetKey assigns the registry key. Concrete watchers call this from
// their constructors.
func (bw *BaseWatcher) SetKey(key string) {
	bw.key = key
}

// GetScope reports what the watcher is attached to.
func (bw *BaseWatcher) GetScope() WatcherScope {
	return bw.scope
}

// SetControllerID records which player a PLAYER-scoped watcher belongs to.
func (bw *BaseWatcher) SetControllerID(id string) {
	bw.controllerID = id
}

// GetControllerID returns the owning player, empty for game scope.
func (bw *BaseWatcher) GetControllerID() string {
	return bw.controllerID
}

// SetSourceID records which card instance a CARD-scoped watcher belongs to.
func (bw *BaseWatcher) SetSourceID(id string) {
	bw.sourceID = id
}

// GetSourceID returns the owning card instance, empty otherwise.
func (bw *BaseWatcher) GetSourceID() string {
	return bw.sourceID
}

// ConditionMet reports whether the tracked condition currently holds.
func (bw *BaseWatcher) ConditionMet() bool {
	return bw.condition
}

// SetCondition records the tracked condition.
func (bw *BaseWatcher) SetCondition(condition bool) {
	bw.condition = condition
}

// Reset clears the tracked condition.
func (bw *BaseWatcher) Reset() {
	bw.condition = false
}

// WatcherRegistry manages the watchers attached to a game. Watchers
// are notified in the order they were added.
type WatcherRegistry struct {
	mu      sync.RWMutex
	ordered []Watcher
	byKey   map[string]Watcher
}

// NewWatcherRegistry creates an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{byKey: make(map[string]Watcher)}
}

// AddWatcher adds a watcher to the registry. A watcher with a key that
// is already registered replaces the old one in place.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil || watcher.GetKey() == "" {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.GetKey()
	if _, exists := wr.byKey[key]; exists {
		for i, w := range wr.ordered {
			if w.GetKey() == key {
				wr.ordered[i] = watcher
				break
			}
		}
	} else {
		wr.ordered = append(wr.ordered, watcher)
	}
	wr.byKey[key] = watcher
}

// RemoveWatcher drops the watcher registered under key, if any.
func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if _, ok := wr.byKey[key]; !ok {
		return
	}
	delete(wr.byKey, key)
	for i, w := range wr.ordered {
		if w.GetKey() == key {
			wr.ordered = append(wr.ordered[:i], wr.ordered[i+1:]...)
			break
		}
	}
}

// GetWatcher looks up a watcher by key.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.byKey[key]
}

// GetWatchersByScope returns all watchers for a given scope, in
// registration order.
func (wr *WatcherRegistry) GetWatchersByScope(scope WatcherScope) []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	var result []Watcher
	for _, w := range wr.ordered {
		if w.GetScope() == scope {
			result = append(result, w)
		}
	}
	return result
}

// GetAllWatchers returns all registered watchers in registration order.
func (wr *WatcherRegistry) GetAllWatchers() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	result := make([]Watcher, len(wr.ordered))
	copy(result, wr.ordered)
	return result
}

// ResetWatchers resets every watcher, typically at end of turn.
func (wr *WatcherRegistry) ResetWatchers() {
	for _, watcher := range wr.GetAllWatchers() {
		watcher.Reset()
	}
}

// NotifyWatchers notifies every watcher of an event, in registration
// order. Watchers filter internally.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	for _, watcher := range wr.GetAllWatchers() {
		watcher.Watch(event)
	}
}
