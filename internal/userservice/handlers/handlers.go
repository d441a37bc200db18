// Package handlers exposes the user directory over HTTP behind the gateway.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/dmitrijs2005/kubelearn/internal/userservice/directory"
	"github.com/gin-gonic/gin"
)

type DirectoryService interface {
	ListUsers(ctx context.Context) (*directory.Listing, error)
	GetUser(ctx context.Context, id string) (*models.PublicUser, error)
	DeleteUser(ctx context.Context, id string, callerRole models.Role) error
}

type Handler struct {
	svc      DirectoryService
	verifier *identity.Verifier
	logger   logging.Logger
}

// NewHandler builds the directory handlers. verifier may be nil, in which
// case the bare identity headers are trusted.
func NewHandler(svc DirectoryService, verifier *identity.Verifier, logger logging.Logger) *Handler {
	return &Handler{svc: svc, verifier: verifier, logger: logger.With("module", "directory_handlers")}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", httpx.Health)

	api := r.Group("/api/users", identity.Middleware(h.verifier, h.logger), identity.RequireIdentity())
	api.GET("", h.List)
	api.GET("/:id", h.Get)
	api.DELETE("/:id", identity.RequireRole(models.RoleAdmin), h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	listing, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *Handler) Get(c *gin.Context) {
	u, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
}

func (h *Handler) Delete(c *gin.Context) {
	caller, _ := identity.FromGin(c)

	err := h.svc.DeleteUser(c.Request.Context(), c.Param("id"), caller.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "user deleted by admin", "user_id", c.Param("id"), "admin_id", caller.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrForbidden):
		httpx.AbortError(c, http.StatusForbidden, common.CodeForbidden, "insufficient role")
	case errors.Is(err, common.ErrNotFound):
		httpx.AbortError(c, http.StatusNotFound, common.CodeNotFound, "user not found")
	case errors.Is(err, common.ErrCacheInvalidation):
		h.logger.Error(c.Request.Context(), "stale directory possible", "error", err)
		httpx.AbortError(c, http.StatusServiceUnavailable, common.CodeCacheInvalidation, "user deleted, listing may be stale")
	case errors.Is(err, common.ErrUpstreamUnavailable):
		h.logger.Warn(c.Request.Context(), "origin unavailable", "error", err)
		httpx.AbortError(c, http.StatusServiceUnavailable, common.CodeUnavailable, "service unavailable")
	default:
		h.logger.Error(c.Request.Context(), "request failed", "error", err)
		httpx.AbortError(c, http.StatusInternalServerError, common.CodeInternal, "server error")
	}
}
