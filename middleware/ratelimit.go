package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/wyfcoding/knapsack/contextx"
	"github.com/wyfcoding/knapsack/response"
	"github.com/wyfcoding/knapsack/xerrors"
)

// LocalLimiter 按客户端 IP 分桶的本地令牌桶限流器。
// 超过 idle 未访问的桶会在下一次清理时被回收。
type LocalLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewLocalLimiter 创建限流器，limit 为每秒补充的令牌数。
func NewLocalLimiter(limit float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		limit:     rate.Limit(limit),
		burst:     burst,
		idle:      10 * time.Minute,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow 判断 key 是否还有可用令牌。
func (l *LocalLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.limiter.AllowN(now, 1)
}

// RateLimit 以客户端 IP 为限流标识的 Gin 中间件，优先使用 RequestID 中间件写入 Context 的 IP。
func RateLimit(l *LocalLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := contextx.GetIP(c.Request.Context())
		if key == "" {
			key = c.ClientIP()
		}
		if !l.Allow(key) {
			slog.WarnContext(c.Request.Context(), "request rejected by rate limiter", "key", key, "path", c.Request.URL.Path)
			response.Error(c, xerrors.ErrRateLimited.Derive("client %s exceeded %v requests per second", key, float64(l.limit)))
			c.Abort()
			return
		}
		c.Next()
	}
}
