// Package provision calls the external invite function. The function's
// responses are duck-typed (sometimes an error object, sometimes an
// error-shaped success payload); everything is normalized here into one
// typed error before it reaches the directory service.
package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"inventory/api/internal/config"
)

type Kind string

const (
	// KindTransport covers network and configuration failures: the
	// function was never reached or did not answer sensibly.
	KindTransport Kind = "transport"
	// KindNeverAuthenticated means the target user has no account yet
	// and cannot be pre-provisioned; they must log in once first.
	KindNeverAuthenticated Kind = "never_authenticated"
	// KindFunction is any other error the function reported.
	KindFunction Kind = "function"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provision %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("provision %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the success payload: the user was promoted or activated.
type Result struct {
	Message string
}

type Client struct {
	cfg  config.ProvisionConfig
	http *http.Client
}

func NewClient(cfg config.ProvisionConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type inviteRequest struct {
	Email string `json:"email"`
}

type inviteResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Invite asks the function to provision email. The three outcome classes
// each surface distinctly: transport/config failure, "user must log in
// once first", or success.
func (c *Client) Invite(ctx context.Context, email string) (Result, error) {
	if c.cfg.FunctionURL == "" {
		return Result{}, &Error{Kind: KindTransport, Message: "invite function not configured"}
	}

	body, err := json.Marshal(inviteRequest{Email: email})
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.FunctionURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Message: "call invite function", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Message: "read response", Err: err}
	}

	var payload inviteResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return Result{}, &Error{Kind: KindTransport, Message: "malformed function response"}
		}
		return Result{}, &Error{Kind: KindTransport, Message: fmt.Sprintf("invite function returned status %d", resp.StatusCode)}
	}

	// The function reports domain failures both via status codes and via
	// error-shaped bodies on 200s. Treat any error field as authoritative.
	if payload.Error != "" || resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusNotFound || isUserNotFound(payload.Error) {
			msg := payload.Message
			if msg == "" {
				msg = "user must log in once before being invited"
			}
			return Result{}, &Error{Kind: KindNeverAuthenticated, Message: msg}
		}
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("invite function returned status %d", resp.StatusCode)
		}
		return Result{}, &Error{Kind: KindFunction, Message: msg}
	}

	return Result{Message: payload.Message}, nil
}

func isUserNotFound(errMsg string) bool {
	msg := strings.ToLower(errMsg)
	return strings.Contains(msg, "user not found") || strings.Contains(msg, "not found")
}

// KindOf extracts the provisioning outcome kind, or "" for non-provision
// errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
