package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/audire/casting-portal/internal/config"
	"github.com/audire/casting-portal/pkg/logger"
)

// ResponseCache keeps rendered casting listings in Redis. Every stored key
// is also recorded in an index set so a change to any casting can drop the
// whole listing cache in one round trip.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns a cache that stays inactive when caching is
// disabled or rdb is nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) active() bool { return rc.cfg.Enabled && rc.rdb != nil }

func (rc *ResponseCache) indexKey() string { return rc.cfg.Prefix + ":index" }

// entryKey identifies a listing by method, route and query string.
func (rc *ResponseCache) entryKey(c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.Method + " " + c.Path() + "?" + r.URL.RawQuery))
	return rc.cfg.Prefix + ":entry:" + hex.EncodeToString(sum[:])
}

// cachedResponse is the stored form of a listing. Only the content type is
// replayed: listings carry no other meaningful headers.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body up to limit bytes. overflow is set
// once the body grew past the limit.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	limit    int
	overflow bool
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	if !br.overflow {
		if br.limit > 0 && br.body.Len()+len(b) > br.limit {
			br.overflow = true
			br.body.Reset()
		} else {
			br.body.Write(b)
		}
	}
	return br.ResponseWriter.Write(b)
}

// Listing serves cached 200 responses for the configured methods and stores
// fresh ones. Mount it only on routes whose output is the same for every
// caller.
func (rc *ResponseCache) Listing() echo.MiddlewareFunc {
	if !rc.active() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.entryKey(c)

			if raw, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}
			rc.store(context.WithoutCancel(ctx), key, cachedResponse{
				Status:      rec.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
			})
			return nil
		}
	}
}

func (rc *ResponseCache) store(ctx context.Context, key string, resp cachedResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_, err = rc.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, raw, rc.cfg.TTL)
		p.SAdd(ctx, rc.indexKey(), key)
		p.Expire(ctx, rc.indexKey(), rc.cfg.TTL)
		return nil
	})
	if err != nil {
		log := logger.Get()
		log.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
}

// Purge drops every cached listing recorded in the index.
func (rc *ResponseCache) Purge(ctx context.Context) error {
	if !rc.active() {
		return nil
	}
	keys, err := rc.rdb.SMembers(ctx, rc.indexKey()).Result()
	if err != nil {
		return err
	}
	return rc.rdb.Del(ctx, append(keys, rc.indexKey())...).Err()
}

// PurgeOnSuccess purges the cache after the wrapped handler answered with
// a 2xx status. A failed purge is logged; entries then expire with their TTL.
func (rc *ResponseCache) PurgeOnSuccess() echo.MiddlewareFunc {
	if !rc.active() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if status := c.Response().Status; status >= 200 && status < 300 {
				if err := rc.Purge(context.WithoutCancel(c.Request().Context())); err != nil {
					log := logger.Get()
					log.Warn().Err(err).Str("route", c.Path()).Msg("cache purge failed")
				}
			}
			return nil
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
