package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// L'script fa la poda, el recompte i el registre en una sola execució
// atòmica: N peticions concurrents no poden llegir totes el mateix
// recompte i colar-se alhora. Els rebuigs no s'enregistren.
var allowScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], 0, ARGV[1])
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call("ZADD", KEYS[1], ARGV[3], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// RedisWindow és la mateixa finestra lliscant sobre un sorted set de
// Redis, per quan el servei corre amb més d'una instància i el
// comptador en memòria es partiria.
type RedisWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisWindow(client *redis.Client, limit int, window time.Duration) *RedisWindow {
	return &RedisWindow{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (rw *RedisWindow) Allow(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := "ratelimit:" + id
	now := rw.now()
	cutoff := now.Add(-rw.window)

	// El membre porta un uuid: dues peticions al mateix instant han de
	// comptar com a dues, no col·lapsar en una sola entrada del set.
	member := fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString())

	allowed, err := allowScript.Run(ctx, rw.client, []string{key},
		cutoff.UnixNano(),
		rw.limit,
		now.UnixNano(),
		member,
		(rw.window * 2).Milliseconds(),
	).Int64()
	if err != nil {
		// Si Redis no respon, deixem passar: el throttling és una
		// protecció, no una garantia de correcció.
		log.WithError(err).Warn("rate limit: redis unavailable, allowing request")
		return true
	}

	return allowed == 1
}
