package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Лимиты на /api/*: по IP до аутентификации, по user_id после.
// Загрузка документов идёт теми же запросами, лимит по IP с запасом.
const (
	rateLimitWindow  = time.Minute
	rateLimitMaxIP   = 200
	rateLimitMaxUser = 100
	rateLimitSweep   = 5 * time.Minute
)

type rateLimiter struct {
	mu        sync.Mutex
	times     map[string][]time.Time
	max       int
	window    time.Duration
	lastSweep time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{times: make(map[string][]time.Time), max: max, window: window, lastSweep: time.Now()}
}

func (r *rateLimiter) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-r.window)
	if now.Sub(r.lastSweep) >= rateLimitSweep {
		r.sweep(cutoff)
		r.lastSweep = now
	}
	slice := r.times[key]
	i := 0
	for _, t := range slice {
		if t.After(cutoff) {
			slice[i] = t
			i++
		}
	}
	slice = slice[:i]
	if len(slice) >= r.max {
		return false
	}
	r.times[key] = append(slice, now)
	return true
}

// sweep удаляет ключи без свежих отметок, иначе карта растёт на каждый новый IP.
// Вызывается под r.mu.
func (r *rateLimiter) sweep(cutoff time.Time) {
	for key, slice := range r.times {
		alive := false
		for _, t := range slice {
			if t.After(cutoff) {
				alive = true
				break
			}
		}
		if !alive {
			delete(r.times, key)
		}
	}
}

var (
	apiRateByIP   = newRateLimiter(rateLimitMaxIP, rateLimitWindow)
	apiRateByUser = newRateLimiter(rateLimitMaxUser, rateLimitWindow)
)

func clientIP(r *http.Request) string {
	if x := r.Header.Get("X-Real-Ip"); x != "" {
		return x
	}
	if x := r.Header.Get("X-Forwarded-For"); x != "" {
		if idx := strings.IndexByte(x, ','); idx > 0 {
			return strings.TrimSpace(x[:idx])
		}
		return x
	}
	return r.RemoteAddr
}

// RateLimitAPI ограничивает запросы к /api/* по IP. Работает до аутентификации;
// лимит по пользователю — в RateLimitUser. Страницы и статика не считаются.
// 429 при превышении.
func RateLimitAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}
		if !apiRateByIP.allow(clientIP(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitUser ограничивает запросы по user_id из контекста. Монтируется
// внутри защищённой группы после RequireAuth — раньше user_id в контексте нет.
func RateLimitUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := GetUserID(r.Context()); userID != "" {
			if !apiRateByUser.allow("u:" + userID) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
