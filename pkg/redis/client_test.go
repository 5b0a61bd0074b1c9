package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
)

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{cmd: mock}
	key := client.RateLimitKey("login:ip:1.2.3.4")

	for want := int64(1); want <= 3; want++ {
		n, err := client.IncrWithTTL(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, time.Minute, mock.ttl[key])
	assert.Equal(t, 1, mock.expiresApplied, "later hits keep the original window")

	n, err := client.IncrWithTTL(ctx, "cl:no-ttl", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.NotContains(t, mock.ttl, "cl:no-ttl")
}

func TestSetNXHoldsUntilDeleted(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newMockCmdable()}
	key := client.VoteLockKey("user-1", "jelly-1")

	ok, err := client.SetNX(ctx, key, "1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, key, "1", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "cl:idempotency:checkout:abc", client.IdempotencyKey("checkout", "abc"))
	assert.Equal(t, "cl:rate_limit:scope", client.RateLimitKey("scope"))
	assert.Equal(t, "cl:session:access:jti-1", client.AccessSessionKey("jti-1"))
	assert.Equal(t, "cl:cart:user-1", client.CartKey("user-1"))
	assert.Equal(t, "cl:lock:vote:user-1:jelly-9", client.VoteLockKey("user-1", "jelly-9"))
	assert.Equal(t, "cl:cart", client.CartKey(""), "empty parts are skipped")
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:          "redis://localhost:6379/2",
		PoolSize:     7,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)

	_, err = optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	assert.Error(t, client.Ping(context.Background()))
	_, err := client.Get(context.Background(), "k")
	assert.Error(t, err)
}

type mockCmdable struct {
	data           map[string]string
	counters       map[string]int64
	ttl            map[string]time.Duration
	expiresApplied int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:     map[string]string{},
		counters: map[string]int64{},
		ttl:      map[string]time.Duration{},
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := m.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttl[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttl[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.counters[key]++
	return redis.NewIntResult(m.counters[key], nil)
}

func (m *mockCmdable) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.ttl[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.ttl[key] = ttl
	m.expiresApplied++
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttl, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
