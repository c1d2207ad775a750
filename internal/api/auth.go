package api

import "context"

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries a new account profile.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login authenticates with email and password. The backend also sets the
// HTTP-only refresh cookie on this client's jar.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var res AuthResponse
	err := c.post(ctx, "/auth/login", req, &res)
	return res, err
}

// Register creates an account; the backend responds 201 with the same shape
// as login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var res AuthResponse
	err := c.post(ctx, "/auth/register", req, &res)
	return res, err
}

// Refresh mints a new access token from the jar-held refresh cookie and
// stores it on the client. Shares the same single-flight guard as the
// transparent 401 recovery.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.refreshAccessToken(ctx)
	return err
}

// Logout invalidates the server-side refresh token. The caller is expected
// to clear local session state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}
