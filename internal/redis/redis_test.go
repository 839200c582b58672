package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions_HostPort(t *testing.T) {
	opts, err := Config{Addr: "cache:6379", Password: "pw", DB: 2, PoolSize: 8, OpTimeout: time.Second}.options()
	require.NoError(t, err)

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, "tixevents", opts.ClientName)
}

func TestConfigOptions_URL(t *testing.T) {
	opts, err := Config{Addr: "redis://:secret@cache:6380/3", Password: "ignored"}.options()
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

func TestConfigOptions_BadURL(t *testing.T) {
	_, err := Config{Addr: "redis://cache:6379/notadb"}.options()
	assert.Error(t, err)
}
