package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/finlab/walletcore/pkg/auth"
)

const idempotencyHeader = "Idempotency-Key"

type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key, scoped per account and path. Responses with 5xx
// status are not stored so the client can retry them.
func Idempotency(client *redis.Client, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			accountID, _ := r.Context().Value(auth.AccountIDKey).(int)
			cacheKey := fmt.Sprintf("idem:%d:%s:%s", accountID, r.URL.Path, key)

			raw, err := client.Get(r.Context(), cacheKey).Bytes()
			if err == nil {
				var stored storedResponse
				if err := json.Unmarshal(raw, &stored); err == nil {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Idempotent-Replay", "true")
					w.WriteHeader(stored.Status)
					_, _ = w.Write(stored.Body)
					return
				}
			} else if !errors.Is(err, redis.Nil) {
				zap.L().Warn("idempotency lookup failed", zap.Error(err))
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				return
			}
			raw, err = json.Marshal(storedResponse{Status: rec.status, Body: rec.body.Bytes()})
			if err != nil {
				return
			}
			if err := client.Set(r.Context(), cacheKey, raw, ttl).Err(); err != nil {
				zap.L().Warn("idempotency store failed",
					zap.String("key", key),
					zap.Int("account_id", accountID),
					zap.Error(err))
			}
		})
	}
}
