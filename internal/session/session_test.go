package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"khojstudio.pk/khoj-web/internal/api"
)

type stubBackend struct {
	mux          *http.ServeMux
	loginCode    int
	loginMessage string
	role         string
	refreshOK    bool
	logoutFails  bool
	logoutCalls  int
}

func newStubBackend() *stubBackend {
	return &stubBackend{loginCode: 200, role: "user", loginMessage: "ok"}
}

func (b *stubBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	b.mux = http.NewServeMux()
	b.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if b.loginCode != 200 {
			writeEnv(w, b.loginCode, nil, b.loginMessage)
			return
		}
		writeEnv(w, 200, map[string]any{
			"user":   map[string]string{"id": "u1", "name": "Ayesha", "email": "a@khoj.pk", "role": b.role},
			"tokens": map[string]string{"accessToken": "tok-1"},
		}, "ok")
	})
	b.mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if !b.refreshOK {
			writeEnv(w, 401, nil, "no refresh cookie")
			return
		}
		writeEnv(w, 200, map[string]string{"accessToken": "tok-refreshed"}, "ok")
	})
	b.mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalls++
		if b.logoutFails {
			writeEnv(w, 500, nil, "backend down")
			return
		}
		writeEnv(w, 200, nil, "ok")
	})
	b.mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeEnv(w, 401, nil, "login required")
			return
		}
		writeEnv(w, 200, map[string]string{"id": "u1", "name": "Ayesha", "email": "a@khoj.pk", "role": b.role}, "ok")
	})
	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeEnv(w http.ResponseWriter, code int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "data": json.RawMessage(raw), "message": message})
}

func newSession(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	client, err := api.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return New(client, nil)
}

func TestLoginSuccessStoresTokenAndUser(t *testing.T) {
	b := newStubBackend()
	s := newSession(t, b.server(t))

	out := s.Login(context.Background(), "a@khoj.pk", "secret")
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.RedirectTo != "/account" {
		t.Fatalf("expected /account redirect, got %q", out.RedirectTo)
	}
	if s.Client().AccessToken() != "tok-1" {
		t.Fatalf("expected stored token, got %q", s.Client().AccessToken())
	}
	u := s.CurrentUser()
	if u == nil || u.ID != "u1" {
		t.Fatalf("expected current user u1, got %+v", u)
	}
}

func TestLoginAdminRedirectsToAdmin(t *testing.T) {
	b := newStubBackend()
	b.role = "admin"
	s := newSession(t, b.server(t))

	out := s.Login(context.Background(), "a@khoj.pk", "secret")
	if !out.Success || out.RedirectTo != "/admin" {
		t.Fatalf("expected admin redirect, got %+v", out)
	}
}

func TestLoginFailurePassesBackendMessageThrough(t *testing.T) {
	b := newStubBackend()
	b.loginCode = 401
	b.loginMessage = "Invalid email or password"
	s := newSession(t, b.server(t))

	out := s.Login(context.Background(), "a@khoj.pk", "wrong")
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Message != "Invalid email or password" {
		t.Fatalf("expected verbatim backend message, got %q", out.Message)
	}
	if s.IsAuthenticated() {
		t.Fatal("failed login must not attach a user")
	}
}

func TestLogoutClearsStateEvenWhenCallFails(t *testing.T) {
	b := newStubBackend()
	b.logoutFails = true
	s := newSession(t, b.server(t))

	s.Login(context.Background(), "a@khoj.pk", "secret")
	if !s.IsAuthenticated() {
		t.Fatal("precondition: logged in")
	}
	s.Logout(context.Background())
	if b.logoutCalls != 1 {
		t.Fatalf("expected one logout call, got %d", b.logoutCalls)
	}
	if s.IsAuthenticated() || s.Client().AccessToken() != "" {
		t.Fatal("logout must clear local state unconditionally")
	}
}

func TestBootstrapSilentRefreshHydratesUser(t *testing.T) {
	b := newStubBackend()
	b.refreshOK = true
	s := newSession(t, b.server(t))

	s.Bootstrap(context.Background())
	u := s.CurrentUser()
	if u == nil || u.Email != "a@khoj.pk" {
		t.Fatalf("expected hydrated user, got %+v", u)
	}
	if s.Client().AccessToken() != "tok-refreshed" {
		t.Fatalf("expected refreshed token, got %q", s.Client().AccessToken())
	}
}

func TestBootstrapFailureIsSilent(t *testing.T) {
	b := newStubBackend()
	b.refreshOK = false
	s := newSession(t, b.server(t))

	s.Bootstrap(context.Background())
	if s.IsAuthenticated() {
		t.Fatal("failed bootstrap must leave session anonymous")
	}
}

func TestAuthedFailsFastWithoutUser(t *testing.T) {
	b := newStubBackend()
	s := newSession(t, b.server(t))

	if _, err := s.Authed(); err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	s.Login(context.Background(), "a@khoj.pk", "secret")
	if _, err := s.Authed(); err != nil {
		t.Fatalf("expected authed client, got %v", err)
	}
}
