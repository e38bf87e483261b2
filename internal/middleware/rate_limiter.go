package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"autolavado/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ventana tracks request counts per key within a fixed window.
type ventana struct {
	count     int
	windowEnd time.Time
}

// limiteLocal is the in-process fallback used when Redis is absent or failing.
type limiteLocal struct {
	mu      sync.Mutex
	entries map[string]*ventana
}

func (l *limiteLocal) incr(key string, window time.Duration, now time.Time) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &ventana{windowEnd: now.Add(window)}
		l.entries[key] = e
	}
	e.count++
	return e.count, e.windowEnd
}

func (l *limiteLocal) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

const purgeInterval = 5 * time.Minute

// RateLimiter limits requests per client IP to limit per window. Counters
// live in Redis when rdb is set; when it is nil or unreachable an in-memory
// window takes over.
func RateLimiter(rdb *redis.Client, nombre string, limit int, window time.Duration, msg string) gin.HandlerFunc {
	local := &limiteLocal{entries: make(map[string]*ventana)}
	var once sync.Once

	return func(c *gin.Context) {
		once.Do(func() { go purgeLoop(nombre, local) })

		key := fmt.Sprintf("ratelimit:%s:%s", nombre, c.ClientIP())
		count, reset, err := incrRedis(c.Request.Context(), rdb, key, window)
		if err != nil {
			if rdb != nil {
				log.Debug().Err(err).Str("limiter", nombre).Msg("rate limiter: redis no disponible, usando memoria")
			}
			count, reset = local.incr(key, window, time.Now())
		}

		if count > limit {
			secs := int(time.Until(reset).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login and registration attempts to 20 per minute per IP.
func LoginRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimiter(rdb, "login", 20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

func incrRedis(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int, time.Time, error) {
	if rdb == nil {
		return 0, time.Time{}, redis.Nil
	}
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if count == 1 {
		if err := rdb.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		return 1, time.Now().Add(window), nil
	}
	ttl, err := rdb.PTTL(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if ttl < 0 {
		// key lost its expiry; restart the window
		_ = rdb.PExpire(ctx, key, window).Err()
		ttl = window
	}
	return int(count), time.Now().Add(ttl), nil
}

func purgeLoop(nombre string, local *limiteLocal) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for now := range ticker.C {
		if n := local.purge(now); n > 0 {
			log.Debug().Str("limiter", nombre).Int("entries_purged", n).Msg("rate limiter map purged")
		}
	}
}
