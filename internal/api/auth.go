package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a token. The token is not stored; the session
// decides whether to keep it.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	return &resp, nil
}

// Register creates a customer account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return &resp, nil
}

// Profile fetches the user behind the current token.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/auth/profile", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &user, nil
}

// UpdateProfile saves profile changes and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodPut, "/auth/profile", nil, update, &user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return &user, nil
}

// ChangePassword changes the password of the current user.
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	if err := c.doRequest(ctx, http.MethodPut, "/auth/password", nil, change, nil); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}
	return nil
}
