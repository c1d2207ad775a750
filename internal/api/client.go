package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout  = 10 * time.Second
	refreshFlightID = "refresh"
)

var errBaseURLRequired = errors.New("api: base URL is required")

// Client issues calls against the backend API for a single visitor. It owns
// that visitor's in-memory access token and a cookie jar that carries the
// backend's HTTP-only refresh cookie; neither ever touches durable storage.
//
// When a call comes back 401 with a bearer attached, the client runs exactly
// one refresh-and-retry cycle. The refresh itself is single-flight: however
// many calls hit the expired token at once, only one POST /auth/refresh goes
// out and every caller retries (or fails) on that shared outcome.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string

	refresh singleflight.Group
}

// NewClient constructs a client for one visitor session.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
	}, nil
}

// AccessToken returns the currently held access token, if any.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetAccessToken replaces the in-memory access token.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

// ClearAccessToken drops the in-memory access token.
func (c *Client) ClearAccessToken() {
	c.SetAccessToken("")
}

// call performs one API operation: marshal body, attach bearer, execute,
// decode the envelope into out. On 401 with a token attached it refreshes
// once and retries once; it never retries beyond that.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Code: 0, Message: genericFailureMessage, cause: err}
		}
		payload = b
	}

	token := c.AccessToken()
	err := c.roundTrip(ctx, method, path, payload, "", token, out)
	if err == nil || token == "" || !IsUnauthorized(err) {
		return err
	}

	fresh, refreshErr := c.refreshAccessToken(ctx)
	if refreshErr != nil {
		return &Error{
			Code:    http.StatusUnauthorized,
			Message: "Session expired. Please login again.",
			cause:   ErrSessionExpired,
		}
	}
	return c.roundTrip(ctx, method, path, payload, "", fresh, out)
}

// refreshAccessToken mints a new access token using the jar-held refresh
// cookie. Concurrent callers share one in-flight refresh.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do(refreshFlightID, func() (any, error) {
		var res struct {
			AccessToken string `json:"accessToken"`
		}
		// No bearer on the refresh call itself: it authenticates by cookie.
		if err := c.roundTrip(ctx, http.MethodPost, "/auth/refresh", nil, "", "", &res); err != nil {
			c.ClearAccessToken()
			return "", err
		}
		c.SetAccessToken(res.AccessToken)
		return res.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	token, _ := v.(string)
	if token == "" {
		return "", ErrSessionExpired
	}
	return token, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// roundTrip executes a single HTTP exchange and decodes the envelope. It
// performs no retries; recovery policy lives in call.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, contentType, token string, out any) error {
	endpoint := c.baseURL + path
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &Error{Code: 0, Message: genericFailureMessage, cause: err}
	}
	if contentType == "" {
		contentType = "application/json"
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Code: 0, Message: genericFailureMessage, cause: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{Code: resp.StatusCode, Message: genericFailureMessage, cause: err}
	}
	code := env.Code
	if code == 0 {
		code = resp.StatusCode
	}
	if code != http.StatusOK && code != http.StatusCreated {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = genericFailureMessage
		}
		return &Error{Code: code, Message: msg}
	}
	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Code: code, Message: genericFailureMessage, cause: err}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPost, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodDelete, path, nil, out)
}

// upload posts a multipart file. The file is buffered up front so the
// refresh-and-retry cycle can replay the body.
func (c *Client) upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return &Error{Code: 0, Message: genericFailureMessage, cause: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &Error{Code: 0, Message: genericFailureMessage, cause: err}
	}
	if err := mw.Close(); err != nil {
		return &Error{Code: 0, Message: genericFailureMessage, cause: err}
	}

	payload := buf.Bytes()
	contentType := mw.FormDataContentType()

	token := c.AccessToken()
	err = c.roundTrip(ctx, http.MethodPost, path, payload, contentType, token, out)
	if err == nil || token == "" || !IsUnauthorized(err) {
		return err
	}
	fresh, refreshErr := c.refreshAccessToken(ctx)
	if refreshErr != nil {
		return &Error{
			Code:    http.StatusUnauthorized,
			Message: "Session expired. Please login again.",
			cause:   ErrSessionExpired,
		}
	}
	return c.roundTrip(ctx, http.MethodPost, path, payload, contentType, fresh, out)
}

// queryPath joins a path with encoded query values.
func queryPath(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
