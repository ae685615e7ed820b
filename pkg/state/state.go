package state

import (
	"sync"
	"time"
)

// State represents the state of a chat
type State string

const (
	// StateNormal is the normal state
	StateNormal State = "normal"
	// StateEditingMemo is the state when the next text message is a room memo
	StateEditingMemo State = "editing_memo"
	// StateImportingRoster is the state when the next document is tonight's settings
	StateImportingRoster State = "importing_roster"
)

// stateTTL is how long a chat stays in a non-normal state
const stateTTL = 10 * time.Minute

// ChatState represents the state of a chat and the room it refers to
type ChatState struct {
	State     State
	Group     string
	Room      string
	Timestamp time.Time
}

// Manager manages chat states
type Manager struct {
	states map[int64]ChatState
	now    func() time.Time
	mu     sync.Mutex
}

// New creates a new state manager
func New() *Manager {
	return &Manager{
		states: make(map[int64]ChatState),
		now:    time.Now,
	}
}

// SetState sets the state for a chat
func (m *Manager) SetState(chatID int64, state State, group, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = ChatState{
		State:     state,
		Group:     group,
		Room:      room,
		Timestamp: m.now(),
	}
}

// GetState gets the state for a chat. States older than ten minutes are
// dropped and read as normal.
func (m *Manager) GetState(chatID int64) ChatState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[chatID]; ok {
		if m.now().Sub(state.Timestamp) > stateTTL {
			delete(m.states, chatID)
			return ChatState{State: StateNormal}
		}
		return state
	}
	return ChatState{State: StateNormal}
}

// ClearState clears the state for a chat
func (m *Manager) ClearState(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
}
