package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/authservice/api"
	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(status int, body api.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func TestVerify_Success(t *testing.T) {
	alice := identity.Identity{UserID: "u-1", Username: "alice", Role: models.RoleUser}

	var gotReq api.VerifyRequest
	var gotRID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.PathVerify, r.URL.Path)
		gotRID = r.Header.Get(common.HeaderRequestID)
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		respond(http.StatusOK, api.Response{Success: true, User: &alice})(w, r)
	}))
	defer srv.Close()

	ctx := httpx.WithRequestID(context.Background(), "rid-1")
	got, err := New(srv.URL+"/", time.Second).Verify(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.Equal(t, "alice", gotReq.Username)
	assert.Equal(t, "rid-1", gotRID)
}

func TestRegister_SendsUserRole(t *testing.T) {
	var gotReq api.RegisterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.PathRegister, r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		respond(http.StatusOK, api.Response{Success: true, User: &identity.Identity{UserID: "u-1", Username: "alice", Role: models.RoleUser}})(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "user", gotReq.Role)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   api.Response
		want   error
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, api.Response{Code: api.CodeInvalidCredentials}, common.ErrInvalidCredentials, ""},
		{"conflict", http.StatusConflict, api.Response{Code: api.CodeUserExists}, common.ErrUsernameTaken, ""},
		{"conflict without code", http.StatusConflict, api.Response{}, common.ErrUpstreamUnavailable, ""},
		{"validation", http.StatusBadRequest, api.Response{Code: api.CodeValidation, Reason: common.CodeUsernameTooShort}, common.ErrValidation, common.CodeUsernameTooShort},
		{"server error", http.StatusInternalServerError, api.Response{Code: api.CodeInternal}, common.ErrUpstreamUnavailable, ""},
		{"ok without user", http.StatusOK, api.Response{Success: true}, common.ErrUpstreamUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(respond(tt.status, tt.body))
			defer srv.Close()

			_, err := New(srv.URL, time.Second).Verify(context.Background(), "alice", "secret1")
			assert.ErrorIs(t, err, tt.want)
			if tt.code != "" {
				assert.Equal(t, tt.code, common.ValidationCode(err))
			}
		})
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	_, err := New(srv.URL, 50*time.Millisecond).Verify(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Verify(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}
