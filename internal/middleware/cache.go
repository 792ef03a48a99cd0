package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/logger"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// ResponseCache caches successful responses in Redis, keyed by request path.
// Writers call Purge for the paths they change so readers never see a stale
// layout.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns a cache; with caching disabled or no client every
// method is a no-op.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

// pathPrefix is the key prefix shared by every cached variant of path.  The
// path is hashed so glob characters never reach SCAN.
func (rc *ResponseCache) pathPrefix(path string) string {
	sum := sha1.Sum([]byte(path))
	return fmt.Sprintf("%s:%x", rc.cfg.Prefix, sum[:])
}

// genKey holds a counter bumped by every Purge of path.  It lives outside
// pathPrefix so the purge SCAN never deletes it.
func (rc *ResponseCache) genKey(path string) string {
	sum := sha1.Sum([]byte(path))
	return fmt.Sprintf("%s:gen:%x", rc.cfg.Prefix, sum[:])
}

// generation returns the purge counter of path, "0" before the first purge.
func (rc *ResponseCache) generation(ctx context.Context, path string) (string, error) {
	g, err := rc.rdb.Get(ctx, rc.genKey(path)).Result()
	if err == redis.Nil {
		return "0", nil
	}
	return g, err
}

// storeIfCurrent sets KEYS[2] only while the generation in KEYS[1] still
// equals ARGV[1].  A response rendered before a purge is never stored after it.
var storeIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[1])
if not gen then gen = "0" end
if gen ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// key builds a stable cache key honoring the key strategy.  The URL path is
// used rather than the route template so /eventos/1 and /eventos/2 never
// share an entry.
func (rc *ResponseCache) key(c echo.Context) string {
	r := c.Request()
	parts := []string{"m", r.Method}
	if !strings.EqualFold(rc.cfg.KeyStrategy, "path") {
		parts = append(parts, "q", r.URL.RawQuery)
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", rc.pathPrefix(r.URL.Path), sum[:])
}

// Purge drops every cached variant of path and bumps its generation so
// responses still in flight are not stored.
func (rc *ResponseCache) Purge(ctx context.Context, path string) error {
	if !rc.enabled() {
		return nil
	}
	if err := rc.rdb.Incr(ctx, rc.genKey(path)).Err(); err != nil {
		return err
	}
	iter := rc.rdb.Scan(ctx, 0, rc.pathPrefix(path)+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.rdb.Del(ctx, keys...).Err()
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// Middleware serves cached responses and stores 200 responses on a miss.
// Headers are stored with the body so clients see identical formatting.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.enabled() {
		return passThrough
	}
	maxBody := int64(rc.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.key(c)

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, HeaderCorrelationID) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			// Read before the handler so a purge that lands while it runs
			// invalidates this response.
			gen, err := rc.generation(ctx, c.Request().URL.Path)
			if err != nil {
				logger.FromContext(ctx).WithError(err).Warn("cache: generation read failed")
				return next(c)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			// Truncated bodies are not cached.
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			keys := []string{rc.genKey(c.Request().URL.Path), key}
			stored, err := storeIfCurrent.Run(context.WithoutCancel(ctx), rc.rdb, keys, gen, payload, rc.cfg.TTL.Milliseconds()).Int()
			if err != nil {
				logger.FromContext(ctx).WithError(err).Warn("cache: store failed")
			} else if stored == 0 {
				logger.FromContext(ctx).WithField("path", c.Request().URL.Path).Debug("cache: purged while rendering, not stored")
			}
			return nil
		}
	}
}
