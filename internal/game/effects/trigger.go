package effects

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Trigger reacts to a specific event type and produces a follow-up
// when its condition is satisfied.
type Trigger struct {
	ID         string
	SourceID   string
	Controller string
	EventType  rules.EventType
	Condition  func(rules.Event) bool
	Build      func(rules.Event) FollowUp
	// Once removes the trigger after its first firing.
	Once bool
}

// TriggerManager stores triggers and evaluates them against events.
// Triggers fire in registration order.
type TriggerManager struct {
	mu       sync.Mutex
	ordered  []string
	triggers map[string]Trigger
}

// NewTriggerManager creates an empty trigger manager.
func NewTriggerManager() *TriggerManager {
	return &TriggerManager{triggers: make(map[string]Trigger)}
}

// Register adds a new trigger and returns its ID.
func (tm *TriggerManager) Register(trigger Trigger) string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if trigger.ID == "" {
		trigger.ID = uuid.NewString()
	}
	if _, exists := tm.triggers[trigger.ID]; !exists {
		tm.ordered = append(tm.ordered, trigger.ID)
	}
	tm.triggers[trigger.ID] = trigger
	return trigger.ID
}

// Unregister removes a trigger by ID.
func (tm *TriggerManager) Unregister(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.remove(id)
}

func (tm *TriggerManager) remove(id string) {
	if _, ok := tm.triggers[id]; !ok {
		return
	}
	delete(tm.triggers, id)
	for i, tid := range tm.ordered {
		if tid == id {
			tm.ordered = append(tm.ordered[:i], tm.ordered[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered triggers.
func (tm *TriggerManager) Count() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.triggers)
}

// Handle evaluates the event against all registered triggers, in
// registration order, and returns the follow-ups they produce.
func (tm *TriggerManager) Handle(event rules.Event) []FollowUp {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if len(tm.triggers) == 0 {
		return nil
	}

	var (
		followUps []FollowUp
		toRemove  []string
	)

	for _, id := range tm.ordered {
		trigger := tm.triggers[id]
		if trigger.EventType != event.Type {
			continue
		}
		if trigger.Condition != nil && !trigger.Condition(event) {
			continue
		}
		if trigger.Build == nil {
			continue
		}

		item := trigger.Build(event)
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Kind == "" {
			item.Kind = FollowUpTriggered
		}
		if item.SourceID == "" {
			item.SourceID = trigger.SourceID
		}
		if item.Controller == "" {
			item.Controller = trigger.Controller
		}
		followUps = append(followUps, item)

		if trigger.Once {
			toRemove = append(toRemove, id)
		}
	}

	for _, id := range toRemove {
		tm.remove(id)
	}

	return followUps
}
