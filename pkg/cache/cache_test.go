package cache

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestRedisCacheSetGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "test")
	ctx := context.Background()

	mock.ExpectSet("test:k", []byte(`{"name":"a","price":1.5}`), time.Minute).SetVal("OK")
	require.NoError(t, c.Set(ctx, "k", payload{Name: "a", Price: 1.5}, time.Minute))

	mock.ExpectGet("test:k").SetVal(`{"name":"a","price":1.5}`)
	var got payload
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", Price: 1.5}, got)

	mock.ExpectGet("test:missing").RedisNil()
	err := c.Get(ctx, "missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheKeysStripsPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "test")

	mock.ExpectKeys("test:idea:*").SetVal([]string{"test:idea:a", "test:idea:b"})
	keys, err := c.Keys(context.Background(), "idea:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"idea:a", "idea:b"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheDeleteByPattern(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "test")

	mock.ExpectKeys("test:idea:*").SetVal([]string{"test:idea:a"})
	mock.ExpectUnlink("test:idea:a").SetVal(1)
	require.NoError(t, c.DeleteByPattern(context.Background(), "idea:*"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheMGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "test")

	mock.ExpectMGet("test:a", "test:b").SetVal([]interface{}{`{"name":"a","price":1}`, nil})
	got, err := MGetTyped[payload](context.Background(), c, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]payload{"a": {Name: "a", Price: 1}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "test")

	mock.ExpectGet("test:k").SetErr(redis.ErrClosed)
	var s string
	err := c.Get(context.Background(), "k", &s)
	assert.ErrorIs(t, err, redis.ErrClosed)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(WithMemoryMaxSize(10))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "idea:X:1", payload{Name: "x"}, time.Minute))
	require.NoError(t, c.Set(ctx, "idea:X:2", "raw", time.Minute))
	require.NoError(t, c.Set(ctx, "idea:Y:1", payload{Name: "y"}, time.Minute))

	var p payload
	require.NoError(t, c.Get(ctx, "idea:X:1", &p))
	assert.Equal(t, "x", p.Name)

	var s string
	require.NoError(t, c.Get(ctx, "idea:X:2", &s))
	assert.Equal(t, "raw", s)

	keys, err := c.Keys(ctx, "idea:X:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"idea:X:1", "idea:X:2"}, keys)

	require.NoError(t, c.DeleteByPattern(ctx, "idea:X:*"))
	ok, err := c.Exists(ctx, "idea:X:1", "idea:X:2")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "idea:Y:1")
	assert.True(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)
	var s string
	assert.ErrorIs(t, c.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestMemoryCacheEvicts(t *testing.T) {
	c := NewMemoryCache(WithMemoryMaxSize(2))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, c.Set(ctx, "c", "3", time.Minute))

	ok, _ := c.Exists(ctx, "a")
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "c")
	assert.True(t, ok)
}

func TestLayeredCacheServesLocalCopy(t *testing.T) {
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote, WithLayeredMemorySize(10), WithLayeredMemoryTTL(time.Minute))
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, lc.Set(ctx, "a", payload{Name: "a", Price: 1}, time.Hour))
	require.NoError(t, remote.Delete(ctx, "a"))

	var got payload
	require.NoError(t, lc.Get(ctx, "a", &got))
	assert.Equal(t, "a", got.Name)

	require.NoError(t, remote.Set(ctx, "b", payload{Name: "b", Price: 2}, time.Hour))
	require.NoError(t, lc.Get(ctx, "b", &got))
	assert.Equal(t, 2.0, got.Price)
	require.NoError(t, lc.Get(ctx, "b", &got))

	assert.ErrorIs(t, lc.Get(ctx, "missing", &got), ErrCacheMiss)

	st := lc.Stats()
	assert.Equal(t, uint64(2), st.LocalHits)
	assert.Equal(t, uint64(2), st.LocalMisses)

	require.NoError(t, lc.Delete(ctx, "b"))
	assert.ErrorIs(t, lc.Get(ctx, "b", &got), ErrCacheMiss)
}

func TestRedisOptions(t *testing.T) {
	cases := []struct {
		name string
		opts []RedisOption
		want redisConfig
	}{
		{name: "defaults", want: redisConfig{addr: "localhost:6379", poolSize: 10, prefix: "smctrader"}},
		{
			name: "configured",
			opts: []RedisOption{WithRedisAddress("redis", 6380), WithRedisAuth("pw", 2), WithRedisPoolSize(20), WithRedisPrefix("smc")},
			want: redisConfig{addr: "redis:6380", password: "pw", db: 2, poolSize: 20, prefix: "smc"},
		},
		{
			name: "blank keeps defaults",
			opts: []RedisOption{WithRedisAddress(" ", 0), WithRedisPoolSize(0), WithRedisPrefix("")},
			want: redisConfig{addr: "localhost:6379", poolSize: 10, prefix: "smctrader"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultRedisConfig()
			for _, o := range tc.opts {
				o(&cfg)
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
}
