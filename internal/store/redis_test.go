package store_test

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/salesrep/internal/constants"
	"github.com/Alturino/salesrep/internal/store"
	"github.com/Alturino/salesrep/internal/testutil"
)

func TestRedisNotifier(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	c := testutil.Context(t)

	redisContainer, err := testRedis.Run(
		c,
		"redis:7.4.2-alpine3.21",
		testRedis.WithLogLevel(testRedis.LogLevelVerbose),
	)
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Errorf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	require.NoError(t, err)
	redisOpt, err := redis.ParseURL(redisConnStr)
	require.NoError(t, err)

	writer := store.NewRedisNotifier(redis.NewClient(redisOpt), "salesrep:test")
	reader := store.NewRedisNotifier(redis.NewClient(redisOpt), "salesrep:test")
	t.Cleanup(func() {
		writer.Close()
		reader.Close()
	})

	changes, cancel, err := reader.Subscribe(c, constants.TABLE_PRODUCTS)
	require.NoError(t, err)

	require.NoError(t, writer.Publish(c, constants.TABLE_CART_ITEMS))
	require.NoError(t, writer.Publish(c, constants.TABLE_PRODUCTS))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("change on products was not delivered")
	}
	select {
	case <-changes:
		t.Fatal("change on cart_items was delivered to a products subscriber")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	_, ok := <-changes
	require.False(t, ok)
}
