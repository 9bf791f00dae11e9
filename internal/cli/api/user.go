package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"HealthMate/internal/cli/model"
)

// ErrNotVerified is returned by Login when the account still needs OTP verification.
var ErrNotVerified = errors.New("account is not verified")

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the credential and identity of a successful login.
type LoginResponse struct {
	Token   string          `json:"token"`
	User    *model.Identity `json:"user"`
	Message string          `json:"message"`
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	CNIC     string `json:"cnic,omitempty"`
	Password string `json:"password"`
}

// CurrentUser resolves the identity behind token via GET /api/user.
// The token is sent explicitly so the caller decides which credential is checked.
func (c *Client) CurrentUser(ctx context.Context, token string) (*model.Identity, error) {
	var id *model.Identity
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/user",
		header: http.Header{"Authorization": {"Bearer " + token}},
	}, &id)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("%w: empty identity", ErrMalformed)
	}
	return id, nil
}

// Login exchanges email and password for a token. A 401 means the email is not verified yet.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/login", payload: in}, &out); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %v", ErrNotVerified, err)
		}
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, fmt.Errorf("%w: login response without token or user", ErrMalformed)
	}
	return &out, nil
}

// Register creates an account; the server then sends an OTP to the email.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (string, error) {
	return c.postMessage(ctx, "/api/register", in)
}

// VerifyOTP confirms the email with the one-time code.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	return c.postMessage(ctx, "/api/verify-otp", map[string]string{"email": email, "otp": otp})
}

// ForgetPassword asks the server to email a reset link.
func (c *Client) ForgetPassword(ctx context.Context, email string) (string, error) {
	return c.postMessage(ctx, "/api/forget-password", map[string]string{"email": email})
}

// ResetPassword sets a new password using the token from the reset link.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	return c.postMessage(ctx, "/api/reset-password", map[string]string{"token": token, "password": password})
}

func (c *Client) postMessage(ctx context.Context, path string, payload any) (string, error) {
	var out messageResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: path, payload: payload}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
