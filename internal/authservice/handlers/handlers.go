// Package handlers exposes the Credential Verifier over HTTP. It is only
// reachable from the gateway and answers JSON, never redirects.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/kubelearn/internal/authservice/api"
	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/gin-gonic/gin"
)

type CredentialService interface {
	Verify(ctx context.Context, username, password string) (*models.User, error)
	Create(ctx context.Context, username, password string, role models.Role) (*models.User, error)
}

type Handler struct {
	svc    CredentialService
	logger logging.Logger
}

func NewHandler(svc CredentialService, logger logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With("module", "auth_handlers")}
}

// Register mounts the verifier routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", httpx.Health)

	auth := r.Group("/", BodyOnly())
	auth.POST(api.PathVerify, h.Verify)
	auth.POST(api.PathRegister, h.RegisterUser)
}

// BodyOnly drops cookies and identity headers: these endpoints trust the
// request body and nothing else.
func BodyOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Header.Del("Cookie")
		identity.Strip(c.Request.Header)
		c.Next()
	}
}

func (h *Handler) Verify(c *gin.Context) {
	var req api.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.NewValidationError(common.CodeMissingFields))
		return
	}

	user, err := h.svc.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, user)
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.NewValidationError(common.CodeMissingFields))
		return
	}

	user, err := h.svc.Create(c.Request.Context(), req.Username, req.Password, models.Role(req.Role))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, user)
}

func (h *Handler) ok(c *gin.Context, u *models.User) {
	id := identity.FromUser(u)
	c.JSON(http.StatusOK, api.Response{Success: true, User: &id})
}

func (h *Handler) fail(c *gin.Context, err error) {
	resp := api.Response{Success: false}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
		resp.Code = api.CodeValidation
		resp.Reason = common.ValidationCode(err)
		resp.Message = "invalid input"
	case errors.Is(err, common.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		resp.Code = api.CodeInvalidCredentials
		resp.Message = "invalid credentials"
	case errors.Is(err, common.ErrUsernameTaken):
		status = http.StatusConflict
		resp.Code = api.CodeUserExists
		resp.Message = "user already exists"
	case errors.Is(err, common.ErrUpstreamUnavailable):
		h.logger.Warn(c.Request.Context(), "credential store unavailable", "path", c.FullPath(), "error", err)
		status = http.StatusServiceUnavailable
		resp.Code = api.CodeUnavailable
		resp.Message = "service unavailable"
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		resp.Code = api.CodeInternal
		resp.Message = "server error"
	}

	c.JSON(status, resp)
}
