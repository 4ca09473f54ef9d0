package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/pagination"
)

type memoryCache struct {
	data    map[string][]byte
	getErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			m.deleted = append(m.deleted, k)
		}
	}
	return nil
}

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	repo := newMemoryCache()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	key := ContentListKey(models.KindPosts, "T1", pagination.Window{Start: 0, Limit: 20})
	var out []string
	assert.False(t, svc.Get(ctx, key, &out))

	svc.Set(ctx, key, []string{"a"}, 0)
	assert.True(t, svc.Get(ctx, key, &out))
	assert.Equal(t, []string{"a"}, out)

	other := ContentListKey(models.KindPosts, "T2", pagination.Window{Start: 0, Limit: 20})
	svc.Set(ctx, other, []string{"b"}, 0)

	svc.InvalidateContent(ctx, models.KindPosts, "T1")
	assert.Equal(t, []string{key}, repo.deleted)
	assert.True(t, svc.Get(ctx, other, &out))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
}

func TestCacheServiceSwallowsErrors(t *testing.T) {
	repo := newMemoryCache()
	repo.getErr = errors.New("redis down")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var out []string
	assert.False(t, svc.Get(context.Background(), "k", &out))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCache()
	svc := NewCacheService(repo, nil, 0, nil, false)
	svc.Set(context.Background(), "k", "v", 0)
	assert.Empty(t, repo.data)
}
