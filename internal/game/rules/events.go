package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Game lifecycle events
	EventGameCreated EventType = "GAME_CREATED"
	EventGameStarted EventType = "GAME_STARTED"
	EventGameEnded   EventType = "GAME_ENDED"

	// Setup events
	EventPlayerJoined      EventType = "PLAYER_JOINED"
	EventDeckAssigned      EventType = "DECK_ASSIGNED"
	EventHandDealt         EventType = "HAND_DEALT"
	EventHandRevealed      EventType = "HAND_REVEALED"
	EventMulliganDeclared  EventType = "MULLIGAN_DECLARED"
	EventMulliganExhausted EventType = "MULLIGAN_EXHAUSTED"
	EventCompensationDrawn EventType = "COMPENSATION_DRAWN"
	EventActiveChosen      EventType = "ACTIVE_CHOSEN"
	EventPrizesPlaced      EventType = "PRIZES_PLACED"
	EventSetupCompleted    EventType = "SETUP_COMPLETED"

	// Turn events
	EventTurnStarted  EventType = "TURN_STARTED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventPhaseChanged EventType = "PHASE_CHANGED"

	// Card movement events
	EventCardDrawn       EventType = "CARD_DRAWN"
	EventCardDiscarded   EventType = "CARD_DISCARDED"
	EventShuffleOccurred EventType = "SHUFFLE_OCCURRED"
	EventPrizeTaken      EventType = "PRIZE_TAKEN"

	// Board events
	EventPokemonBenched  EventType = "POKEMON_BENCHED"
	EventPokemonEvolved  EventType = "POKEMON_EVOLVED"
	EventPokemonPromoted EventType = "POKEMON_PROMOTED"
	EventEnergyAttached  EventType = "ENERGY_ATTACHED"
	EventTrainerPlayed   EventType = "TRAINER_PLAYED"
	EventRetreated       EventType = "RETREATED"

	// Combat events
	EventAttackUsed        EventType = "ATTACK_USED"
	EventDamageDealt       EventType = "DAMAGE_DEALT"
	EventDamageHealed      EventType = "DAMAGE_HEALED"
	EventPokemonKnockedOut EventType = "POKEMON_KNOCKED_OUT"

	// Condition events
	EventConditionApplied EventType = "CONDITION_APPLIED"
	EventConditionRemoved EventType = "CONDITION_REMOVED"
	EventConditionDamage  EventType = "CONDITION_DAMAGE"

	// Random events
	EventCoinFlipped EventType = "COIN_FLIPPED"

	// Player events
	EventPlayerConceded EventType = "PLAYER_CONCEDED"
)

// IsSetup returns true if this event type belongs to the pre-game setup ladder.
func (et EventType) IsSetup() bool {
	setupEvents := map[EventType]bool{
		EventPlayerJoined:      true,
		EventDeckAssigned:      true,
		EventHandDealt:         true,
		EventHandRevealed:      true,
		EventMulliganDeclared:  true,
		EventMulliganExhausted: true,
		EventCompensationDrawn: true,
		EventActiveChosen:      true,
		EventPrizesPlaced:      true,
		EventSetupCompleted:    true,
	}
	return setupEvents[et]
}

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	ID          string            // Unique event ID
	GameID      string            // Game the event belongs to
	TargetID    string            // ID of the target (Pokémon instance, player, etc.)
	SourceID    string            // ID of the source card/effect
	Controller  string            // Player ID of the controller of the source
	PlayerID    string            // Player the event concerns (often same as Controller)
	Amount      int               // Numeric value (damage, cards drawn, pile size, etc.)
	Flag        bool              // Boolean payload (heads/tails, weakness applied, etc.)
	Data        string            // Additional string data
	Cards       []string          // Card names involved (revealed hands, discards)
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty matches every type
	callback  Listener
}

// EventBus provides a synchronous publish/subscribe implementation.
// Listeners are invoked in registration order, and a listener may
// publish further events from inside its callback; nested events are
// delivered before the outer Publish returns.
type EventBus struct {
	mu         sync.Mutex
	subs       []subscription
	nextHandle int
	depth      int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, callback: listener})
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback Listener) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: callback})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
// Removal does not disturb the relative order of the remaining listeners.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all matching listeners synchronously,
// in the order they were registered. The subscription list is
// snapshotted before dispatch so listeners may subscribe, unsubscribe,
// or publish nested events from their callbacks; listeners added
// during dispatch first see the next published event.
func (bus *EventBus) Publish(event Event) {
	bus.mu.Lock()
	snapshot := make([]subscription, len(bus.subs))
	copy(snapshot, bus.subs)
	bus.depth++
	bus.mu.Unlock()

	defer func() {
		bus.mu.Lock()
		bus.depth--
		bus.mu.Unlock()
	}()

	for _, sub := range snapshot {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.callback(event)
		}
	}
}

// PublishBatch publishes multiple events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// Depth reports how many Publish calls are currently on the stack.
// Zero means no dispatch is in progress.
func (bus *EventBus) Depth() int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return bus.depth
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, controllerID string) Event {
	return Event{
		Type:       eventType,
		TargetID:   targetID,
		SourceID:   sourceID,
		Controller: controllerID,
		PlayerID:   controllerID,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, controllerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Amount = amount
	return evt
}

// NewEventWithFlag creates a new event with a flag value.
func NewEventWithFlag(eventType EventType, targetID, sourceID, controllerID string, flag bool) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Flag = flag
	return evt
}
