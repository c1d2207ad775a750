// Package session owns the authenticated-user lifecycle for one visitor:
// login, register, logout, and the silent refresh that restores a session
// from the backend's HTTP-only refresh cookie. The access token and user
// record live only in process memory.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
)

// ErrNotAuthenticated is returned when an authenticated operation is
// attempted with no current user. Callers must not fall through to a
// network call in this state.
var ErrNotAuthenticated = errors.New("session: not authenticated")

const (
	adminLanding   = "/admin"
	accountLanding = "/account"
)

// Outcome is the result shape of login and register. Message comes from the
// backend unmodified on failure.
type Outcome struct {
	Success    bool
	Message    string
	RedirectTo string
}

// Session binds a visitor's API client to their authenticated user, if any.
// The user is present iff the last authentication or refresh call succeeded.
type Session struct {
	client *api.Client
	logger *zap.Logger

	mu           sync.RWMutex
	user         *api.User
	bootstrapped bool
}

// New wraps an API client in a fresh, unauthenticated session.
func New(client *api.Client, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{client: client, logger: logger}
}

// Client exposes the underlying API client for catalog and other calls that
// work for anonymous visitors too.
func (s *Session) Client() *api.Client { return s.client }

// CurrentUser returns the authenticated user, or nil.
func (s *Session) CurrentUser() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is attached.
func (s *Session) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// Authed returns the API client for an authenticated operation, failing
// fast when no user is attached so callers never issue doomed requests.
func (s *Session) Authed() (*api.Client, error) {
	if !s.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.client, nil
}

// Login authenticates and, on success, stores the access token and user in
// memory. Admin users are routed to the admin console.
func (s *Session) Login(ctx context.Context, email, password string) Outcome {
	res, err := s.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return Outcome{Success: false, Message: api.Message(err)}
	}
	s.client.SetAccessToken(res.Tokens.AccessToken)
	s.setUser(res.User)
	return Outcome{Success: true, Message: "Welcome back", RedirectTo: landingFor(res.User)}
}

// Register creates an account and signs the visitor in.
func (s *Session) Register(ctx context.Context, req api.RegisterRequest) Outcome {
	res, err := s.client.Register(ctx, req)
	if err != nil {
		return Outcome{Success: false, Message: api.Message(err)}
	}
	s.client.SetAccessToken(res.Tokens.AccessToken)
	s.setUser(res.User)
	return Outcome{Success: true, Message: "Account created", RedirectTo: landingFor(res.User)}
}

// Logout invalidates the server-side refresh token, then unconditionally
// clears local state: a user-initiated logout must never leave the session
// stuck authenticated, even when the network call fails.
func (s *Session) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("logout call failed; clearing local session anyway", zap.Error(err))
	}
	s.client.ClearAccessToken()
	s.clearUser()
}

// Bootstrap attempts one silent refresh from the jar-held refresh cookie and
// hydrates the user profile. Any failure is a normal "not logged in"
// outcome, never an error to surface. Runs at most once per session.
func (s *Session) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.bootstrapped {
		s.mu.Unlock()
		return
	}
	s.bootstrapped = true
	s.mu.Unlock()

	if err := s.client.Refresh(ctx); err != nil {
		return
	}
	profile, err := s.client.Profile(ctx)
	if err != nil {
		s.logger.Debug("profile fetch after silent refresh failed", zap.Error(err))
		return
	}
	s.setUser(api.User{
		ID:        profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		Phone:     profile.Phone,
		AvatarURL: profile.AvatarURL,
		Role:      profile.Role,
	})
}

// Expire clears local auth state after a session-expired failure so the next
// page load routes the visitor to login.
func (s *Session) Expire() {
	s.client.ClearAccessToken()
	s.clearUser()
}

func (s *Session) setUser(u api.User) {
	if u.Role == "" {
		u.Role = "user"
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

func (s *Session) clearUser() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func landingFor(u api.User) string {
	if u.IsAdmin() {
		return adminLanding
	}
	return accountLanding
}
