package middleware

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/response"
)

// RateLimitConfig configures the per-key and per-address token buckets.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// IPRPS and IPBurst bound a client address across every key it presents.
	IPRPS   float64
	IPBurst int
	IdleTTL time.Duration
	// KeyField is read from the header or query only; the body is never
	// parsed before the caller is admitted.
	KeyField string
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter admits a request only when the client IP bucket and, if a key
// is presented, that key's bucket both have a token. The IP bucket is
// checked first so unverified keys cannot mint fresh budgets.
type RateLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
	now      func() time.Time
}

// NewRateLimiter constructs a RateLimiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Ceil(cfg.RPS * 2))
	}
	if cfg.IPRPS <= 0 {
		cfg.IPRPS = cfg.RPS * 4
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = cfg.Burst * 4
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.KeyField == "" {
		cfg.KeyField = "x-api-key"
	}
	return &RateLimiter{cfg: cfg, visitors: make(map[string]*visitor), now: time.Now}
}

// Middleware rejects callers over their budget with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.admit(c) {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/l.cfg.RPS))))
			response.Abort(c, appErrors.Clone(appErrors.ErrTooManyRequests, ""))
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) admit(c *gin.Context) bool {
	if !l.allow("ip:" + c.ClientIP()) {
		return false
	}
	key := strings.TrimSpace(c.GetHeader(l.cfg.KeyField))
	if key == "" {
		key = strings.TrimSpace(c.Query(l.cfg.KeyField))
	}
	return key == "" || l.allow("key:"+key)
}

func (l *RateLimiter) allow(caller string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > l.cfg.IdleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.cfg.IdleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[caller]
	if !ok {
		limit, burst := rate.Limit(l.cfg.RPS), l.cfg.Burst
		if strings.HasPrefix(caller, "ip:") {
			limit, burst = rate.Limit(l.cfg.IPRPS), l.cfg.IPBurst
		}
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		l.visitors[caller] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}
