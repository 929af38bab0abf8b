package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes table changes on redis pub/sub so that every
// process sharing the database file observes writes made by the others.
type RedisNotifier struct {
	client *redis.Client
	prefix string
}

func NewRedisNotifier(client *redis.Client, prefix string) *RedisNotifier {
	return &RedisNotifier{client: client, prefix: prefix}
}

func (n *RedisNotifier) channel(table string) string {
	return n.prefix + ":" + table
}

func (n *RedisNotifier) Publish(c context.Context, tables ...string) error {
	for _, table := range tables {
		if err := n.client.Publish(c, n.channel(table), table).Err(); err != nil {
			return fmt.Errorf("failed publishing change of table=%s with error=%w", table, err)
		}
	}
	return nil
}

func (n *RedisNotifier) Subscribe(c context.Context, tables ...string) (<-chan struct{}, func(), error) {
	channels := make([]string, len(tables))
	for i, table := range tables {
		channels[i] = n.channel(table)
	}

	pubsub := n.client.Subscribe(c, channels...)
	// Wait for the confirmation so a write committed right after Subscribe
	// returns is delivered.
	if _, err := pubsub.Receive(c); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed subscribing to channels=%v with error=%w", channels, err)
	}

	sub := &subscription{ch: make(chan struct{}, 1)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range pubsub.Channel() {
			sub.signal()
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			pubsub.Close()
			<-done
			close(sub.ch)
		})
	}
	return sub.ch, cancel, nil
}

// Close closes the underlying client.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
