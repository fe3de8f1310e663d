package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyStore remembers responses to POST requests carrying an
// Idempotency-Key, so a client retrying a dream creation after a dropped
// response gets the original dream instead of a duplicate.
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	now      func() time.Time
	stopOnce sync.Once
	stopChan chan struct{}
}

type idempotencyEntry struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration    // How long to keep results (default 24h)
	Cleanup time.Duration    // Cleanup interval (default 1h)
	Now     func() time.Time // optional, defaults to time.Now
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		now:      cfg.Now,
		stopChan: make(chan struct{}),
	}
	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// fingerprint binds a key to its owner and request so the same key sent
// with a different body is treated as a new request
func fingerprint(ownerID, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	for _, part := range []string{ownerID, idempotencyKey, method, path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	for k, v := range entry.headers {
		for _, val := range v {
			w.Header().Add(k, val)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency returns middleware that replays responses for repeated POST
// requests with the same Idempotency-Key. Server errors are not cached, so
// a retry after a store outage runs again.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get("Idempotency-Key")
			if r.Method != http.MethodPost || idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			owner := GetPrincipalID(r.Context())
			if owner == "" {
				owner = clientIP(r)
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := fingerprint(owner, idempotencyKey, r.Method, r.URL.Path, body)

			store.mu.Lock()
			for {
				existing, ok := store.entries[key]
				if !ok {
					break
				}
				if existing.inFlight {
					store.mu.Unlock()
					<-existing.done
					store.mu.Lock()
					continue
				}
				if existing.expiresAt.After(store.now()) {
					store.mu.Unlock()
					replay(w, existing)
					return
				}
				break
			}

			entry := &idempotencyEntry{inFlight: true, done: make(chan struct{})}
			store.entries[key] = entry
			store.mu.Unlock()

			irw := &idempotencyResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(irw, r)

			store.mu.Lock()
			if irw.status >= http.StatusInternalServerError {
				delete(store.entries, key)
			} else {
				entry.status = irw.status
				entry.headers = irw.Header().Clone()
				entry.body = irw.body.Bytes()
				entry.expiresAt = store.now().Add(store.ttl)
				entry.inFlight = false
			}
			close(entry.done)
			store.mu.Unlock()
		})
	}
}
