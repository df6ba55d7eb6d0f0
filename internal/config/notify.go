package config

import "sync"

// Change describes one settings change.
type Change struct {
	// Folder is the folder scope of the change, "" for the user scope or
	// when an entire file was reloaded from disk.
	Folder string

	// Key is the changed setting path, "" for a whole-file reload.
	Key string

	// Value is the new value, nil for reloads.
	Value any
}

// Reload reports whether the change represents a whole-file reload rather
// than a single-key write.
func (c Change) Reload() bool {
	return c.Key == ""
}

// Observer is called when settings change.
type Observer func(change Change)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. Safe to call twice.
func (s Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier fans settings changes out to observers.
// It is safe for concurrent use.
type Notifier struct {
	mu        sync.RWMutex
	nextID    uint64
	observers map[uint64]Observer
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[uint64]Observer)}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(obs Observer) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	n.observers[n.nextID] = obs
	return Subscription{id: n.nextID, notifier: n}
}

// Notify delivers a change to every observer.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.observers))
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	delete(n.observers, id)
	n.mu.Unlock()
}
