package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/cart"
	"khojstudio.pk/khoj-web/internal/checkout"
	"khojstudio.pk/khoj-web/internal/session"
)

const visitCookieName = "khoj_visit"

// Visit bundles the per-visitor state the storefront keeps in process
// memory. The cookie carries only the opaque ID; everything else lives
// here and is gone when the process restarts.
type Visit struct {
	ID        string
	Session   *session.Session
	Cart      *cart.Cart
	Checkout  *checkout.Checkout
	CSRFToken string

	lastSeen time.Time
}

// StateFactory mints the session, cart, and checkout bundle for a new
// visitor. Each visitor gets its own API client inside the session so
// refresh cookies never leak between browsers.
type StateFactory func() (*session.Session, *cart.Cart, *checkout.Checkout)

// Registry maps signed visit IDs to their in-memory state bundles.
type Registry struct {
	signKey []byte
	secure  bool
	ttl     time.Duration
	mint    StateFactory
	logger  *zap.Logger

	mu     sync.Mutex
	visits map[string]*Visit
}

// NewRegistry builds a registry whose middleware creates one state
// bundle per visitor via mint. Idle visits are dropped after ttl.
func NewRegistry(signKey []byte, secure bool, ttl time.Duration, mint StateFactory, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		signKey: signKey,
		secure:  secure,
		ttl:     ttl,
		mint:    mint,
		logger:  logger,
		visits:  make(map[string]*Visit),
	}
}

// Middleware resolves the visitor's bundle from the signed cookie,
// creating a fresh one when the cookie is absent, invalid, or already
// evicted server-side, and stores the Visit in the request context.
func (reg *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := reg.readCookie(r)
		v := reg.lookup(id, ok)
		if v.ID != id {
			reg.writeCookie(w, v.ID)
		}
		ctx := context.WithValue(r.Context(), ctxKeyVisit, v)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (reg *Registry) lookup(id string, signatureOK bool) *Visit {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if signatureOK {
		if v, exists := reg.visits[id]; exists {
			v.lastSeen = time.Now()
			return v
		}
	}
	return reg.mintLocked()
}

func (reg *Registry) mintLocked() *Visit {
	sess, bag, wizard := reg.mint()
	v := &Visit{
		ID:        uuid.NewString(),
		Session:   sess,
		Cart:      bag,
		Checkout:  wizard,
		CSRFToken: uuid.NewString(),
		lastSeen:  time.Now(),
	}
	reg.visits[v.ID] = v
	return v
}

// Reset discards the visitor's server-side state and hands back a fresh
// bundle under a new ID. Used after logout so a later login on the same
// browser cannot observe stale state.
func (reg *Registry) Reset(w http.ResponseWriter, r *http.Request) *Visit {
	old := VisitFrom(r)
	reg.mu.Lock()
	if old != nil {
		delete(reg.visits, old.ID)
	}
	v := reg.mintLocked()
	reg.mu.Unlock()
	reg.writeCookie(w, v.ID)
	return v
}

// Sweep evicts idle visits every interval until ctx is cancelled.
func (reg *Registry) Sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cutoff := time.Now().Add(-reg.ttl)
			reg.mu.Lock()
			var dropped int
			for id, v := range reg.visits {
				if v.lastSeen.Before(cutoff) {
					delete(reg.visits, id)
					dropped++
				}
			}
			remaining := len(reg.visits)
			reg.mu.Unlock()
			if dropped > 0 {
				reg.logger.Debug("swept idle visits",
					zap.Int("dropped", dropped),
					zap.Int("remaining", remaining))
			}
		}
	}
}

// VisitFrom returns the visit attached by Middleware, or nil.
func VisitFrom(r *http.Request) *Visit {
	v, _ := r.Context().Value(ctxKeyVisit).(*Visit)
	return v
}

func (reg *Registry) readCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(visitCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, sig, found := strings.Cut(c.Value, ".")
	if !found {
		return "", false
	}
	want := reg.sign(id)
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, want) {
		return "", false
	}
	return id, true
}

func (reg *Registry) writeCookie(w http.ResponseWriter, id string) {
	val := id + "." + base64.RawURLEncoding.EncodeToString(reg.sign(id))
	http.SetCookie(w, &http.Cookie{
		Name:     visitCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   reg.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func (reg *Registry) sign(id string) []byte {
	mac := hmac.New(sha256.New, reg.signKey)
	mac.Write([]byte(id))
	return mac.Sum(nil)
}
