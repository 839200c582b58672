package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{User: "tix", Password: "p@ss word", Host: "db", Port: 5433, Name: "events", SSLMode: "disable"}

	assert.Equal(t, "postgres://tix:p%40ss%20word@db:5433/events?sslmode=disable", cfg.DSN())
}

func TestConfigPoolConfig(t *testing.T) {
	cfg := Config{User: "tix", Password: "x", Host: "db", Port: 5432, Name: "events", SSLMode: "disable", MaxConns: 7}

	poolCfg, err := cfg.poolConfig()
	require.NoError(t, err)

	assert.Equal(t, int32(7), poolCfg.MaxConns)
	assert.Equal(t, 5*time.Minute, poolCfg.MaxConnIdleTime)
	assert.Equal(t, "tixevents", poolCfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "UTC", poolCfg.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, "events", poolCfg.ConnConfig.Database)
}
