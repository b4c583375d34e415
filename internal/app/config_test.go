package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"REDIS_ADDR", "NATS_URL", "MONGO_URI", "EVENT_BUS", "LOCKER", "ARCHIVE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendMemory, cfg.EventBus)
	assert.Equal(t, BackendMemory, cfg.Locker)
	assert.Equal(t, BackendMemory, cfg.Archive)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Empty(t, cfg.CORSOrigins)
	assert.True(t, cfg.WatchCatalog)
}

func TestLoadConfig_BackendsFollowInfrastructure(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("NATS_URL", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("EVENT_BUS", "")
	t.Setenv("LOCKER", "")
	t.Setenv("ARCHIVE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, BackendRedis, cfg.EventBus)
	assert.Equal(t, BackendRedis, cfg.Locker)
	assert.Equal(t, BackendMongo, cfg.Archive)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("LOCKER", "Memory")
	cfg = LoadConfig(logger.Nop())
	assert.Equal(t, BackendNATS, cfg.EventBus)
	assert.Equal(t, BackendMemory, cfg.Locker)
}

func TestWireClients_Memory(t *testing.T) {
	ctx := context.Background()
	c, err := wireClients(ctx, logger.Nop(), Config{EventBus: BackendMemory, Locker: BackendMemory, Archive: BackendMemory})
	require.NoError(t, err)
	defer c.Close(ctx)
	assert.NotNil(t, c.Bus)
	assert.NotNil(t, c.Locker)
	assert.NotNil(t, c.Archive)
	assert.Nil(t, c.Redis)
}

func TestWireClients_RejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	_, err := wireClients(ctx, logger.Nop(), Config{EventBus: "kafka", Locker: BackendMemory, Archive: BackendMemory})
	assert.ErrorContains(t, err, "EVENT_BUS")

	_, err = wireClients(ctx, logger.Nop(), Config{EventBus: BackendRedis, Locker: BackendMemory, Archive: BackendMemory})
	assert.ErrorContains(t, err, "REDIS_ADDR")

	_, err = wireClients(ctx, logger.Nop(), Config{EventBus: BackendMemory, Locker: BackendMemory, Archive: BackendMongo})
	assert.ErrorContains(t, err, "MONGO_URI")
}
