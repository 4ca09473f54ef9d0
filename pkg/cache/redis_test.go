package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/center-cms-api/pkg/config"
)

func TestNewRedisUnreachableFailsWithinDialTimeout(t *testing.T) {
	started := time.Now()
	client, err := NewRedis(config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 300 * time.Millisecond})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Less(t, time.Since(started), 5*time.Second)
}
