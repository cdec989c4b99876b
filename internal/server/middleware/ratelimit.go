package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/facialanalyzer/internal/server/handlers"
)

// RateLimitMessage - ответ при превышении лимита
const RateLimitMessage = "Too many attempts, please try again later"

// RateLimiter представляет rate limiter с фиксированным окном на ключ (IP)
type RateLimiter struct {
	buckets  map[string]*bucket
	logger   *slog.Logger
	cleanupC chan struct{}
	now      func() time.Time
	rate     int
	window   time.Duration
	// trustedProxies - число прокси перед сервером, чьим X-Forwarded-For можно верить
	trustedProxies int
	mu             sync.RWMutex
	stopOnce sync.Once
}

// bucket представляет bucket для конкретного IP/ключа
type bucket struct {
	lastRefill time.Time
	tokens     int
	mu         sync.Mutex
}

// NewRateLimiter создает новый rate limiter
// rate - максимальное количество запросов в окне
// window - временное окно (например, 15 минут)
func NewRateLimiter(rate int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		window:   window,
		logger:   logger,
		now:      time.Now,
		cleanupC: make(chan struct{}),
	}

	// Запускаем периодическую очистку старых buckets
	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные buckets для экономии памяти
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupOldBuckets()
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupOldBuckets удаляет buckets, которые не использовались дольше двух окон
func (rl *RateLimiter) cleanupOldBuckets() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefill) > rl.window*2 {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// TrustProxies задает число доверенных прокси перед сервером.
// При 0 ключом служит только адрес соединения.
func (rl *RateLimiter) TrustProxies(hops int) *RateLimiter {
	rl.trustedProxies = max(hops, 0)
	return rl
}

// Stop останавливает cleanup goroutine. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.cleanupC) })
}

// Allow проверяет, разрешен ли запрос для данного ключа (обычно IP адрес)
func (rl *RateLimiter) Allow(key string) bool {
	_, ok := rl.allow(key)
	return ok
}

// allow возвращает также время до сброса окна
func (rl *RateLimiter) allow(key string) (time.Duration, bool) {
	rl.mu.RLock()
	b, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// повторная проверка: bucket мог создать другой запрос
		if b, exists = rl.buckets[key]; !exists {
			b = &bucket{
				tokens:     rl.rate,
				lastRefill: rl.now(),
			}
			rl.buckets[key] = b
		}
		rl.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()

	// Окно истекло - восстанавливаем лимит
	if now.Sub(b.lastRefill) >= rl.window {
		b.tokens = rl.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return 0, true
	}

	return b.lastRefill.Add(rl.window).Sub(now), false
}

// Middleware ограничивает частоту запросов по IP клиента
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// preflight не расходует лимит
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientIP(r, rl.trustedProxies)

			retryAfter, ok := rl.allow(key)
			if !ok {
				rl.logger.WarnContext(r.Context(), "Rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", sanitizePath(r.URL.Path),
				)

				seconds := int(retryAfter.Round(time.Second).Seconds())
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				handlers.WriteError(w, http.StatusTooManyRequests, RateLimitMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP возвращает адрес клиента для ключа лимита.
// Каждый доверенный прокси дописывает адрес своего собеседника в конец
// X-Forwarded-For, поэтому список читается справа: левые записи присылает
// сам клиент и подделать их может кто угодно.
func ClientIP(r *http.Request, trustedProxies int) string {
	// RemoteAddr содержит порт, который меняется между соединениями
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if trustedProxies <= 0 {
		return peer
	}

	var hops []string
	for _, value := range r.Header.Values("X-Forwarded-For") {
		for _, part := range strings.Split(value, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				hops = append(hops, ip)
			}
		}
	}
	// peer - последний доверенный прокси, за ним trustedProxies-1 записей прокси
	addrs := append(hops, peer)
	idx := len(addrs) - 1 - trustedProxies
	if idx < 0 {
		idx = 0
	}
	return addrs[idx]
}
