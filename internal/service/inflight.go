package service

import "sync"

// Action identifies the kind of per-contact operation currently running.
type Action string

const (
	ActionEdit     Action = "edit"
	ActionValidate Action = "validate"
	ActionEnrich   Action = "enrich"
	ActionAccept   Action = "accept_enrichment"
)

// inflightTracker maps contact ids to the action in flight for them. It is
// advisory UI state, not a lock: it exists so one row's running action
// disables only that row's controls, while other rows stay actionable.
type inflightTracker struct {
	mu      sync.Mutex
	actions map[string]Action
}

func newInflightTracker() *inflightTracker {
	return &inflightTracker{actions: make(map[string]Action)}
}

// begin records an action for the contact. It reports false when another
// action is already running for the same contact.
func (t *inflightTracker) begin(contactID string, action Action) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.actions[contactID]; busy {
		return false
	}
	t.actions[contactID] = action
	return true
}

// end clears the contact's in-flight marker.
func (t *inflightTracker) end(contactID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.actions, contactID)
}

// active returns a copy of the current id → action map.
func (t *inflightTracker) active() map[string]Action {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]Action, len(t.actions))
	for id, action := range t.actions {
		out[id] = action
	}
	return out
}
