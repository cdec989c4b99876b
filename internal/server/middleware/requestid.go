package middleware

import (
	"crypto/rand"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/iudanet/facialanalyzer/internal/logging"
)

// RequestIDHeader - заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewRequestID generates a monotonic ULID.
func NewRequestID() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// RequestIDMiddleware присваивает запросу ID (или принимает валидный ULID от прокси),
// кладет его в контекст для логгера и возвращает в заголовке ответа.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if len(id) > maxRequestIDLen {
				id = ""
			}
			if id != "" {
				if _, err := ulid.ParseStrict(id); err != nil {
					id = ""
				}
			}
			if id == "" {
				id = NewRequestID()
			}

			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
		})
	}
}
