package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Mirror keeps a cross-node view of who is online in Redis. The in-process
// registry stays authoritative for routing; the mirror only answers cheap
// "is online" / "who is online" questions for HTTP handlers and for other
// gateway nodes. Entries carry a TTL so a crashed node cannot leave users
// online forever.
type Mirror struct {
	rdb    *redis.Client
	nodeID string
	ttl    time.Duration
	prefix string
}

type MirrorConfig struct {
	NodeID string
	TTL    time.Duration // per-user key TTL, refreshed by the gateway heartbeat
	Prefix string
}

func (c *MirrorConfig) norm() {
	if c.TTL <= 0 {
		c.TTL = 90 * time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "presence"
	}
}

func NewMirror(rdb *redis.Client, cfg MirrorConfig) *Mirror {
	cfg.norm()
	return &Mirror{rdb: rdb, nodeID: cfg.NodeID, ttl: cfg.TTL, prefix: cfg.Prefix}
}

func (m *Mirror) userKey(userID string) string {
	return m.prefix + ":u:" + userID
}

func (m *Mirror) indexKey() string {
	return m.prefix + ":idx"
}

// ===== Lua =====

// Guarded offline: drop the user key only if this node still owns it, so a
// stale disconnect on node A cannot erase a fresh attach on node B.
// KEYS[1] = user key
// KEYS[2] = index zset
// ARGV[1] = node id
// ARGV[2] = index member (user id)
// returns 1 if removed, 0 otherwise
const luaOfflineGuarded = `
local owner = redis.call("GET", KEYS[1])
if owner == ARGV[1] then
  redis.call("DEL", KEYS[1])
  redis.call("ZREM", KEYS[2], ARGV[2])
  return 1
end
return 0
`

// Sweep expired members out of the index and return the live ones.
// KEYS[1] = index zset
// ARGV[1] = now unix
const luaOnlineAndSweep = `
local idx = KEYS[1]
local now = tonumber(ARGV[1])
local victims = redis.call("ZRANGEBYSCORE", idx, "-inf", now)
for _, v in ipairs(victims) do
  redis.call("ZREM", idx, v)
end
return redis.call("ZRANGEBYSCORE", idx, now + 1, "+inf")
`

// Up marks the user online on this node. Also used as the heartbeat refresh.
func (m *Mirror) Up(ctx context.Context, userID string) error {
	expireAt := time.Now().Add(m.ttl)
	pipe := m.rdb.TxPipeline()
	pipe.Set(ctx, m.userKey(userID), m.nodeID, m.ttl)
	pipe.ZAdd(ctx, m.indexKey(), redis.Z{Score: float64(expireAt.Unix()), Member: userID})
	_, err := pipe.Exec(ctx)
	return err
}

// Down removes the user if this node still owns the entry.
func (m *Mirror) Down(ctx context.Context, userID string) (bool, error) {
	res, err := m.rdb.Eval(ctx, luaOfflineGuarded,
		[]string{m.userKey(userID), m.indexKey()},
		m.nodeID, userID).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// IsOnline reports whether any node currently holds a live entry for userID.
func (m *Mirror) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := m.rdb.Exists(ctx, m.userKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Online returns the user ids with a live entry on any node, sweeping
// expired index members as a side effect.
func (m *Mirror) Online(ctx context.Context) ([]string, error) {
	res, err := m.rdb.Eval(ctx, luaOnlineAndSweep,
		[]string{m.indexKey()}, time.Now().Unix()).StringSlice()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}
