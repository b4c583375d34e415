package app

import (
	"strings"
	"time"

	"github.com/yungbote/bidgate-backend/internal/data/db"
	"github.com/yungbote/bidgate-backend/internal/observability"
	"github.com/yungbote/bidgate-backend/internal/platform/envutil"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNATS   = "nats"
	BackendMongo  = "mongo"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	DB   db.Config
	Otel observability.OtelConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EventBus     string
	EventChannel string
	NATSURL      string

	Locker  string
	LockTTL time.Duration

	Archive      string
	MongoURI     string
	MongoDB      string
	MongoArchive string

	CriteriaPath string
	TemplatePath string
	WatchCatalog bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		HTTPAddr:      envutil.String("HTTP_ADDR", ":8080", log),
		CORSOrigins:   splitList(envutil.String("CORS_ALLOWED_ORIGINS", "", log)),
		DB:            db.ConfigFromEnv(log),
		Otel:          observability.OtelConfigFromEnv(log),
		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.Int("REDIS_DB", 0, log),
		EventChannel:  envutil.String("EVENT_CHANNEL", "bidgate.events", log),
		NATSURL:       envutil.String("NATS_URL", "", log),
		LockTTL:       envutil.Duration("LOCK_TTL", 10*time.Second, log),
		MongoURI:      envutil.String("MONGO_URI", "", log),
		MongoDB:       envutil.String("MONGO_DB", "bidgate", log),
		MongoArchive:  envutil.String("MONGO_ARCHIVE_COLLECTION", "prequal_archive", log),
		CriteriaPath:  envutil.String("PREQUAL_CRITERIA_PATH", "", log),
		TemplatePath:  envutil.String("NEGOTIATION_TEMPLATE_PATH", "", log),
		WatchCatalog:  envutil.Bool("CATALOG_WATCH", true, log),
	}

	// Backends follow the configured infrastructure unless pinned.
	cfg.EventBus = strings.ToLower(envutil.String("EVENT_BUS", defaultBackend(cfg.NATSURL != "", BackendNATS, cfg.RedisAddr != "", BackendRedis), log))
	cfg.Locker = strings.ToLower(envutil.String("LOCKER", defaultBackend(cfg.RedisAddr != "", BackendRedis, false, ""), log))
	cfg.Archive = strings.ToLower(envutil.String("ARCHIVE", defaultBackend(cfg.MongoURI != "", BackendMongo, false, ""), log))
	return cfg
}

func defaultBackend(first bool, firstName string, second bool, secondName string) string {
	switch {
	case first:
		return firstName
	case second:
		return secondName
	default:
		return BackendMemory
	}
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
