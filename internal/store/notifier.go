package store

import (
	"context"
	"sync"
)

// Notifier carries table change signals from writers to live queries.
type Notifier interface {
	Publish(c context.Context, tables ...string) error
	// Subscribe returns a channel receiving a signal after any change to one of
	// tables. The channel buffers a single pending signal. cancel releases the
	// subscription and closes the channel.
	Subscribe(c context.Context, tables ...string) (changes <-chan struct{}, cancel func(), err error)
	Close() error
}

type subscription struct {
	tables map[string]struct{}
	ch     chan struct{}
}

func (s *subscription) signal() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// LocalNotifier fans changes out to subscribers of the same process.
type LocalNotifier struct {
	mu   sync.RWMutex
	subs map[*subscription]struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: map[*subscription]struct{}{}}
}

func (n *LocalNotifier) Publish(c context.Context, tables ...string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for sub := range n.subs {
		for _, table := range tables {
			if _, ok := sub.tables[table]; ok {
				sub.signal()
				break
			}
		}
	}
	return nil
}

func (n *LocalNotifier) Subscribe(c context.Context, tables ...string) (<-chan struct{}, func(), error) {
	sub := &subscription{tables: make(map[string]struct{}, len(tables)), ch: make(chan struct{}, 1)}
	for _, table := range tables {
		sub.tables[table] = struct{}{}
	}

	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, sub)
			close(sub.ch)
			n.mu.Unlock()
		})
	}
	return sub.ch, cancel, nil
}

// Subscribers reports the number of open subscriptions.
func (n *LocalNotifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

func (n *LocalNotifier) Close() error {
	return nil
}
