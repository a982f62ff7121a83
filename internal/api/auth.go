package api

import (
	"context"
	"net/http"

	"github.com/fleetpass/fleetctl/internal/session"
)

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the principal it belongs to
type LoginResponse struct {
	Token string            `json:"token"`
	User  session.Principal `json:"user"`
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/login", LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

// Profile fetches the principal for the current token
func (c *Client) Profile(ctx context.Context) (session.Principal, error) {
	var out session.Principal
	err := c.getJSON(ctx, "/api/profile", &out)
	return out, err
}
