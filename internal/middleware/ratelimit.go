package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/config"
	"github.com/audire/casting-portal/pkg/logger"
)

// bucketScript refills a bucket continuously at rate tokens per millisecond
// and takes one token if a whole one is available. It returns
// {allowed, whole tokens left, wait_ms until the next token}.
var bucketScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'level', 'at')
local level = tonumber(state[1]) or capacity
local at = tonumber(state[2]) or now

level = math.min(capacity, level + math.max(0, now - at) * rate)

local allowed = 0
local wait = 0
if level >= 1 then
  allowed = 1
  level = level - 1
else
  wait = math.ceil((1 - level) / rate)
end

redis.call('HSET', KEYS[1], 'level', tostring(level), 'at', tostring(now))
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, math.floor(level), wait}
`)

var errBucketReply = errors.New("rate limit: unexpected script reply")

// Decision is the outcome of taking a token from a bucket.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter hands out tokens from per-caller buckets kept in Redis. Each
// guarded action has its own buckets.
type Limiter struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	now func() time.Time
}

// NewLimiter returns a limiter that lets everything through when limiting
// is disabled or rdb is nil.
func NewLimiter(cfg config.RateLimitConfig, rdb *redis.Client) *Limiter {
	return &Limiter{cfg: cfg, rdb: rdb, now: time.Now}
}

func (l *Limiter) active() bool { return l.cfg.Enabled && l.rdb != nil }

// refillRate is the refill speed in tokens per millisecond.
func (l *Limiter) refillRate() float64 {
	return float64(l.cfg.RefillTokens) / float64(l.cfg.RefillInterval.Milliseconds())
}

// bucketKey scopes a bucket to an action and a caller: the user id when
// signed in, the client address otherwise.
func (l *Limiter) bucketKey(action string, c echo.Context) string {
	who := "ip:" + c.RealIP()
	if p, ok := auth.From(c); ok {
		who = "user:" + strconv.FormatUint(p.UserID, 10)
	}
	return l.cfg.Prefix + ":" + action + ":" + who
}

// Take removes one token from the bucket under key.
func (l *Limiter) Take(ctx context.Context, key string) (Decision, error) {
	res, err := bucketScript.Run(ctx, l.rdb, []string{key},
		l.now().UnixMilli(),
		l.cfg.Capacity,
		strconv.FormatFloat(l.refillRate(), 'g', -1, 64),
		l.cfg.TTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	return decisionFrom(res)
}

func decisionFrom(res []int64) (Decision, error) {
	if len(res) != 3 {
		return Decision{}, errBucketReply
	}
	return Decision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// Guard limits how often one caller may perform action. Redis failures let
// the request through.
func (l *Limiter) Guard(action string) echo.MiddlewareFunc {
	if !l.active() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := l.bucketKey(action, c)
			d, err := l.Take(c.Request().Context(), key)
			if err != nil {
				log := logger.Get()
				log.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if l.cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if d.Allowed {
				return next(c)
			}

			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too many requests",
				"retry_after": secs,
			})
		}
	}
}
