package store

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// subscriberBuffer is the channel buffer size for each subscriber.
const subscriberBuffer = 100

// MemoryOption configures a [MemoryStore] during construction.
type MemoryOption func(*MemoryStore)

// WithSeed replaces the default seed. Entries with blank text are skipped.
func WithSeed(seed []Seed) MemoryOption {
	return func(m *MemoryStore) {
		m.seed = seed
	}
}

// WithClock sets the time source used for CreatedAt and change timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

// MemoryStore is an in-memory implementation of [Store].
//
// A single RWMutex guards the list and the id counter; every mutation holds
// the write lock for its whole duration. Changes are published after the
// lock is released.
type MemoryStore struct {
	mu     sync.RWMutex
	todos  []Todo
	nextID int

	subscribers map[chan Change]struct{}
	subMu       sync.RWMutex

	seed []Seed
	now  func() time.Time
}

// NewMemoryStore creates a [MemoryStore] loaded with the seed todos
// ([DefaultSeed] unless [WithSeed] is given).
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		nextID:      1,
		subscribers: make(map[chan Change]struct{}),
		seed:        DefaultSeed(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, s := range m.seed {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		m.todos = append(m.todos, Todo{
			ID:        m.nextID,
			Text:      text,
			Done:      s.Done,
			CreatedAt: m.timestamp(),
		})
		m.nextID++
	}
	m.seed = nil

	return m
}

// List returns a snapshot of all todos in insertion order.
func (m *MemoryStore) List() []Todo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Todo, len(m.todos))
	copy(out, m.todos)
	return out
}

// Get returns the todo with the given id.
func (m *MemoryStore) Get(id int) (Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return Todo{}, ErrNotFound
	}
	return m.todos[i], nil
}

// Create appends a new pending todo with the next id.
func (m *MemoryStore) Create(text string) (Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Todo{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	m.mu.Lock()
	todo := Todo{
		ID:        m.nextID,
		Text:      text,
		CreatedAt: m.timestamp(),
	}
	m.nextID++
	m.todos = append(m.todos, todo)
	m.mu.Unlock()

	m.publish(Change{Kind: ChangeCreated, Todo: &todo})
	return todo, nil
}

// Update overwrites the fields present in patch.
//
// A text that is blank after trimming is ignored, so stored text is never
// empty. A patch with no effective field returns the unchanged todo and
// publishes nothing.
func (m *MemoryStore) Update(id int, patch Patch) (Todo, error) {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return Todo{}, ErrNotFound
	}

	changed := false
	if patch.Text != nil {
		if text := strings.TrimSpace(*patch.Text); text != "" {
			m.todos[i].Text = text
			changed = true
		}
	}
	if patch.Done != nil {
		m.todos[i].Done = *patch.Done
		changed = true
	}
	todo := m.todos[i]
	m.mu.Unlock()

	if changed {
		m.publish(Change{Kind: ChangeUpdated, Todo: &todo})
	}
	return todo, nil
}

// Toggle flips the done flag of the todo.
func (m *MemoryStore) Toggle(id int) (Todo, error) {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return Todo{}, ErrNotFound
	}
	m.todos[i].Done = !m.todos[i].Done
	todo := m.todos[i]
	m.mu.Unlock()

	m.publish(Change{Kind: ChangeToggled, Todo: &todo})
	return todo, nil
}

// Delete removes the todo and returns it.
func (m *MemoryStore) Delete(id int) (Todo, error) {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return Todo{}, ErrNotFound
	}
	todo := m.todos[i]
	m.todos = append(m.todos[:i], m.todos[i+1:]...)
	m.mu.Unlock()

	m.publish(Change{Kind: ChangeDeleted, Todo: &todo})
	return todo, nil
}

// ClearCompleted removes all done todos, keeping the rest in order.
func (m *MemoryStore) ClearCompleted() int {
	m.mu.Lock()
	kept := m.todos[:0]
	for _, t := range m.todos {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	removed := len(m.todos) - len(kept)
	// zero the tail so removed entries are not retained by the backing array
	clear(m.todos[len(kept):])
	m.todos = kept
	m.mu.Unlock()

	if removed > 0 {
		m.publish(Change{Kind: ChangeCleared, Removed: removed})
	}
	return removed
}

// Subscribe creates a new subscription and returns a channel for receiving
// changes.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new changes are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Change {
	ch := make(chan Change, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Change) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// publish stamps the change and sends it to all active subscribers without
// blocking.
func (m *MemoryStore) publish(c Change) {
	c.At = m.timestamp()

	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- c:
		default:
			// subscriber is slow, drop the change
		}
	}
}

// indexOf returns the position of id in the list, or -1. Caller holds mu.
func (m *MemoryStore) indexOf(id int) int {
	for i, t := range m.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// timestamp returns the current time in UTC truncated to milliseconds.
func (m *MemoryStore) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}
