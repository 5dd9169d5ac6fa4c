// Package idempotency replays responses of repeated POST requests that carry
// an X-Idempotency-Key header. Records live in Redis.
package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/platform/response"
)

const (
	// KeyHeader is the request header holding the client-chosen key.
	KeyHeader = "X-Idempotency-Key"

	keyPrefix     = "booking:idempotency:"
	processingTTL = 30 * time.Second
)

type status string

const (
	statusProcessing status = "processing"
	statusCompleted  status = "completed"
)

type record struct {
	Status       status `json:"status"`
	RequestHash  string `json:"request_hash"`
	ResponseCode int    `json:"response_code"`
	ResponseBody string `json:"response_body"`
}

// Store is the subset of the Redis client the middleware needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Middleware de-duplicates POST requests. scopeHeader names the caller
// identity header, so two users may reuse the same key independently.
// Requests without a key, and Redis failures, pass through.
func Middleware(store Store, ttl time.Duration, scopeHeader string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(KeyHeader)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		hash := requestHash(c, scopeHeader, body)
		redisKey := keyPrefix + c.GetHeader(scopeHeader) + ":" + key
		ctx := c.Request.Context()

		existing, err := load(ctx, store, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if existing == nil {
			rec := record{Status: statusProcessing, RequestHash: hash}
			data, _ := json.Marshal(rec)
			ok, err := store.SetNX(ctx, redisKey, data, processingTTL).Result()
			if err != nil {
				logger.Warn("idempotency store unavailable", zap.Error(err))
				c.Next()
				return
			}
			if ok {
				process(c, store, redisKey, rec, ttl, logger)
				return
			}
			// Lost the race to a concurrent request with the same key.
			existing, _ = load(ctx, store, redisKey)
			if existing == nil {
				c.Next()
				return
			}
		}

		replay(c, existing, hash)
	}
}

func process(c *gin.Context, store Store, redisKey string, rec record, ttl time.Duration, logger *zap.Logger) {
	rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
	c.Writer = rw

	finished := false
	defer func() {
		// A panic is unwinding towards the recovery middleware.
		if !finished {
			release(store, redisKey, logger)
		}
	}()

	c.Next()
	finished = true

	code := rw.Status()
	if code >= http.StatusInternalServerError {
		release(store, redisKey, logger)
		return
	}

	// Use a fresh context: the request context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rec.Status = statusCompleted
	rec.ResponseCode = code
	rec.ResponseBody = rw.body.String()
	data, _ := json.Marshal(rec)
	if err := store.Set(ctx, redisKey, data, ttl).Err(); err != nil {
		logger.Warn("failed to store idempotent response", zap.String("key", redisKey), zap.Error(err))
	}
}

// release drops the record so the client may retry with the same key.
func release(store Store, redisKey string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Del(ctx, redisKey).Err(); err != nil {
		logger.Warn("failed to release idempotency key", zap.String("key", redisKey), zap.Error(err))
	}
}

func replay(c *gin.Context, rec *record, hash string) {
	if rec.RequestHash != hash {
		abort(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "idempotency key already used with a different request")
		return
	}
	if rec.Status == statusProcessing {
		abort(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "a request with this idempotency key is being processed")
		return
	}
	c.Header("Idempotent-Replayed", "true")
	c.Data(rec.ResponseCode, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	c.Abort()
}

func abort(c *gin.Context, code int, errCode, message string) {
	c.AbortWithStatusJSON(code, response.Envelope{
		Success: false,
		Error:   &response.ErrorBody{Code: errCode, Message: message},
	})
}

func load(ctx context.Context, store Store, key string) (*record, error) {
	raw, err := store.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func requestHash(c *gin.Context, scopeHeader string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.RequestURI()))
	h.Write([]byte(c.GetHeader(scopeHeader)))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
