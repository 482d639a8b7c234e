package global

import (
	"os"
	"strconv"

	"github.com/anirbanjana883/ZYRA-backend/tools/ids"
)

// AppConfig holds the runtime configuration of one gateway node. Everything
// resolves from the environment so the same binary can run as several nodes.
type AppConfig struct {
	NodeID    string // participates in snowflake ids and the relay loop guard
	HTTPAddr  string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	RedisPass string
	RedisDB   int
	NatsURL   string // empty disables the cross-node relay
}

var Config AppConfig

func Load() AppConfig {
	Config = AppConfig{
		NodeID:    envOr("NODE_ID", "gateway_01"),
		HTTPAddr:  envOr("HTTP_ADDR", ":8000"),
		MongoURI:  envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   envOr("MONGO_DB", "zyra"),
		RedisAddr: envOr("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		RedisDB:   envInt("REDIS_DB", 0),
		NatsURL:   os.Getenv("NATS_URL"),
	}
	return Config
}

// ConfigIds seeds the id generator from the numeric suffix of the node id,
// so two gateways never mint colliding message ids.
func ConfigIds(node int64) {
	ids.SetNodeID(node)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
