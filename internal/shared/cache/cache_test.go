package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "projects", opts...), mr
}

func TestSetThenGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, "project:1", payload{Name: "relaunch", Count: 3}, 0))

	var got payload
	require.True(t, c.Get(ctx, "project:1", &got))
	assert.Equal(t, "relaunch", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetMissing(t *testing.T) {
	c, _ := newTestCache(t)

	var got payload
	assert.False(t, c.Get(context.Background(), "project:404", &got))
}

func TestKeysAreNamespaced(t *testing.T) {
	c, mr := newTestCache(t)

	require.True(t, c.Set(context.Background(), "project:1", payload{}, 0))
	assert.True(t, mr.Exists("projects:project:1"))
	assert.False(t, mr.Exists("project:1"))
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t, WithTTL(30*time.Second))
	ctx := context.Background()

	require.True(t, c.Set(ctx, "project:1", payload{Name: "short lived"}, 0))

	mr.FastForward(31 * time.Second)

	var got payload
	assert.False(t, c.Get(ctx, "project:1", &got))
}

func TestExplicitTTLWins(t *testing.T) {
	c, mr := newTestCache(t, WithTTL(30*time.Second))
	ctx := context.Background()

	require.True(t, c.Set(ctx, "project:1", payload{}, 5*time.Minute))

	mr.FastForward(time.Minute)

	var got payload
	assert.True(t, c.Get(ctx, "project:1", &got))
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("projects:project:1", "{not json"))

	var got payload
	assert.False(t, c.Get(context.Background(), "project:1", &got))
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, "project:1", payload{}, 0))
	c.Delete(ctx, "project:1")

	var got payload
	assert.False(t, c.Get(ctx, "project:1", &got))
}

func TestDeletePattern(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, "list:0:20", payload{}, 0))
	require.True(t, c.Set(ctx, "list:20:20", payload{}, 0))
	require.True(t, c.Set(ctx, "project:1", payload{}, 0))

	removed := c.DeletePattern(ctx, "list:*")
	assert.Equal(t, 2, removed)

	var got payload
	assert.False(t, c.Get(ctx, "list:0:20", &got))
	assert.True(t, c.Get(ctx, "project:1", &got))
}

func TestDeletePatternScansLargeKeyspaces(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	const total = 250
	for i := 0; i < total; i++ {
		require.True(t, c.Set(ctx, "list:"+strconv.Itoa(i), payload{Count: i}, 0))
	}

	assert.Equal(t, total, c.DeletePattern(ctx, "list:*"))
}

func TestNilClientDegradesQuietly(t *testing.T) {
	c := New(nil, "projects")
	ctx := context.Background()

	assert.False(t, c.Set(ctx, "project:1", payload{}, 0))
	var got payload
	assert.False(t, c.Get(ctx, "project:1", &got))
	c.Delete(ctx, "project:1")
	assert.Zero(t, c.DeletePattern(ctx, "*"))
}

func TestClosedBackendDegradesQuietly(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, "project:1", payload{}, 0))
	mr.Close()

	var got payload
	assert.False(t, c.Get(ctx, "project:1", &got))
	assert.False(t, c.Set(ctx, "project:2", payload{}, 0))
	c.Delete(ctx, "project:1")
	assert.Zero(t, c.DeletePattern(ctx, "*"))
}
