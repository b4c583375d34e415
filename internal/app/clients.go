package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yungbote/bidgate-backend/internal/data/archive"
	"github.com/yungbote/bidgate-backend/internal/platform/locker"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

// Clients holds the optional infrastructure connections and the
// collaborators built on them.
type Clients struct {
	Redis   goredis.UniversalClient
	Mongo   *mongo.Client
	Bus     bus.Bus
	Locker  locker.Locker
	Archive archive.Archive
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...", "event_bus", cfg.EventBus, "locker", cfg.Locker, "archive", cfg.Archive)
	var c Clients

	if cfg.EventBus == BackendRedis || cfg.Locker == BackendRedis {
		if cfg.RedisAddr == "" {
			return c, fmt.Errorf("missing REDIS_ADDR")
		}
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return c, fmt.Errorf("redis ping: %w", err)
		}
		c.Redis = rdb
	}

	var err error
	switch cfg.EventBus {
	case BackendMemory:
		c.Bus = bus.NewMemory()
	case BackendRedis:
		c.Bus, err = bus.NewRedis(c.Redis, cfg.EventChannel, log)
	case BackendNATS:
		c.Bus, err = bus.NewNATS(cfg.NATSURL, cfg.EventChannel, log)
	default:
		err = fmt.Errorf("unsupported EVENT_BUS %q", cfg.EventBus)
	}
	if err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("init event bus: %w", err)
	}

	switch cfg.Locker {
	case BackendMemory:
		c.Locker = locker.NewMemory()
	case BackendRedis:
		c.Locker, err = locker.NewRedis(c.Redis, cfg.LockTTL, log)
	default:
		err = fmt.Errorf("unsupported LOCKER %q", cfg.Locker)
	}
	if err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("init locker: %w", err)
	}

	switch cfg.Archive {
	case BackendMemory:
		c.Archive = archive.NewMemory()
	case BackendMongo:
		err = c.connectMongo(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported ARCHIVE %q", cfg.Archive)
	}
	if err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("init archive: %w", err)
	}
	return c, nil
}

func (c *Clients) connectMongo(ctx context.Context, cfg Config) error {
	if cfg.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI")
	}
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("mongo ping: %w", err)
	}
	c.Mongo = client
	c.Archive = archive.NewMongo(client, cfg.MongoDB, cfg.MongoArchive)
	return archive.EnsureIndexes(connCtx, c.Archive)
}

func (c *Clients) Close(ctx context.Context) {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Disconnect(ctx)
	}
}
