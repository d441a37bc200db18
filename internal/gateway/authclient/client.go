// Package authclient calls the Credential Verifier over its internal JSON
// contract and maps answers onto the shared error sentinels.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/authservice/api"
	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/models"
)

const maxResponseBytes = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client bounded by timeout per call.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Verify checks a username and password. Wrong credentials are
// common.ErrInvalidCredentials; transport problems, timeouts and 5xx are
// common.ErrUpstreamUnavailable.
func (c *Client) Verify(ctx context.Context, username, password string) (identity.Identity, error) {
	return c.call(ctx, api.PathVerify, api.VerifyRequest{Username: username, Password: password})
}

// Register creates a user with role user.
func (c *Client) Register(ctx context.Context, username, password string) (identity.Identity, error) {
	return c.call(ctx, api.PathRegister, api.RegisterRequest{
		Username: username,
		Password: password,
		Role:     string(models.RoleUser),
	})
}

func (c *Client) call(ctx context.Context, path string, body any) (identity.Identity, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: encode: %v", common.ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	httpx.PropagateRequestID(ctx, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: verifier: %v", common.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var out api.Response
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: verifier read: %v", common.ErrUpstreamUnavailable, err)
	}
	// error bodies may be empty or non-JSON; the status code decides
	_ = json.Unmarshal(raw, &out)

	switch {
	case resp.StatusCode == http.StatusOK:
		if !out.Success || out.User == nil || !out.User.Valid() {
			return identity.Identity{}, fmt.Errorf("%w: verifier returned no usable identity", common.ErrUpstreamUnavailable)
		}
		return *out.User, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return identity.Identity{}, common.ErrInvalidCredentials
	case resp.StatusCode == http.StatusConflict && out.Code == api.CodeUserExists:
		return identity.Identity{}, common.ErrUsernameTaken
	case resp.StatusCode == http.StatusBadRequest:
		code := out.Reason
		if code == "" {
			code = common.CodeMissingFields
		}
		return identity.Identity{}, common.NewValidationError(code)
	default:
		return identity.Identity{}, fmt.Errorf("%w: verifier status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	}
}
