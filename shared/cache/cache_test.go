package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	otelMocks "deskhub/infras/otel/mocks"
	"deskhub/shared/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slot struct {
	Start     string `json:"start"`
	Available bool   `json:"available"`
}

func newCache(t *testing.T) (cache.RedisCache, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	return cache.NewRedisCache(client, otelMocks.NewOtel()), mock
}

func TestSave(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectSet("room:availability:r1:2026-10-20", []byte(`{"start":"09:00","available":true}`), 30*time.Second).SetVal("OK")

	err := redisCache.Save(context.Background(), "room:availability:r1:2026-10-20", slot{Start: "09:00", Available: true}, 30)

	assert.NoError(t, err)
}

func TestGet(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectGet("room:availability:r1:2026-10-20").SetVal(`{"start":"09:30","available":false}`)

	var got slot
	require.NoError(t, redisCache.Get(context.Background(), "room:availability:r1:2026-10-20", &got))

	assert.Equal(t, slot{Start: "09:30"}, got)
}

func TestGet_Miss(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectGet("booking:get:b1").RedisNil()

	var got slot
	err := redisCache.Get(context.Background(), "booking:get:b1", &got)

	assert.ErrorIs(t, err, cache.Nil)
}

func TestGet_Corrupt(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectGet("booking:get:b1").SetVal("not json")

	var got slot
	err := redisCache.Get(context.Background(), "booking:get:b1", &got)

	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.Nil)
}

func TestDelete(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectDel("booking:get:b1").SetVal(1)

	assert.NoError(t, redisCache.Delete(context.Background(), "booking:get:b1"))
}

func TestClear(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectScan(0, "room:availability:r1:*", 100).SetVal([]string{"room:availability:r1:2026-10-20", "room:availability:r1:2026-10-21"}, 0)
	mock.ExpectDel("room:availability:r1:2026-10-20", "room:availability:r1:2026-10-21").SetVal(2)

	assert.NoError(t, redisCache.Clear(context.Background(), "room:availability:r1:*"))
}

func TestClear_NothingToDelete(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectScan(0, "room:gets:*", 100).SetVal([]string{}, 0)

	assert.NoError(t, redisCache.Clear(context.Background(), "room:gets:*"))
}

func TestClear_ScanFails(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectScan(0, "room:gets:*", 100).SetErr(errors.New("READONLY"))

	assert.Error(t, redisCache.Clear(context.Background(), "room:gets:*"))
}

func TestIncr(t *testing.T) {
	redisCache, mock := newCache(t)

	mock.ExpectIncr("limiter:203.0.113.7").SetVal(1)
	mock.ExpectExpire("limiter:203.0.113.7", time.Minute).SetVal(true)
	mock.ExpectIncr("limiter:203.0.113.7").SetVal(2)

	first, err := redisCache.Incr(context.Background(), "limiter:203.0.113.7", 60)
	require.NoError(t, err)

	second, err := redisCache.Incr(context.Background(), "limiter:203.0.113.7", 60)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}
