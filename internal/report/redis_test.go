package report

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	exerciseStore(t, NewRedisStore(rdb, "test:", 3))

	ids, err := mr.List("test:reports:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-4", "run-3", "run-2"}, ids)
}

func TestRedisStoreEmptyList(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	list, err := NewRedisStore(rdb, "test:", 3).List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}
