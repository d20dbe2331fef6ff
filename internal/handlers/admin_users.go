package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/macacolandia/dashboard-api/internal/auth"
	"github.com/macacolandia/dashboard-api/internal/models"
	"github.com/macacolandia/dashboard-api/internal/services"
	pkghttp "github.com/macacolandia/dashboard-api/pkg/http"
)

// UserServiceInterface is the account management surface consumed by the
// admin handlers.
type UserServiceInterface interface {
	List(ctx context.Context) ([]*models.Account, error)
	Apply(ctx context.Context, action services.AccountAction) error
	ListActivity(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error)
}

// AdminUserHandler serves the admin account management endpoints.
type AdminUserHandler struct {
	users       UserServiceInterface
	proxyConfig *pkghttp.ProxyConfig
}

func NewAdminUserHandler(users UserServiceInterface, proxyConfig *pkghttp.ProxyConfig) *AdminUserHandler {
	return &AdminUserHandler{users: users, proxyConfig: proxyConfig}
}

// AccountResponse is the admin view of an account.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Approved  bool      `json:"approved"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
}

func accountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Approved:  a.Approved,
		Blocked:   a.Blocked,
		CreatedAt: a.CreatedAt,
	}
}

// List handles GET /api/admin/users.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.users.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list accounts")
		return
	}

	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountResponse(a))
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": out})
}

// AccountActionRequest is the admin mutation request body.
type AccountActionRequest struct {
	UserID string `json:"userId" validate:"required"`
	Action string `json:"action" validate:"required,oneof=approve unapprove block unblock setRole delete"`
	Role   string `json:"role" validate:"omitempty,oneof=admin user"`
}

// Action handles POST /api/admin/users.
func (h *AdminUserHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req AccountActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	claims := auth.SessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	err := h.users.Apply(r.Context(), services.AccountAction{
		TargetID:  req.UserID,
		Action:    req.Action,
		Role:      req.Role,
		AdminID:   claims.AccountID,
		IPAddress: pkghttp.ClientAddr(r, h.proxyConfig),
	})
	if err != nil {
		writeAdminError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func writeAdminError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		pkghttp.WriteBadRequest(w, vErr.Message)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "conflict")
	default:
		pkghttp.WriteInternalError(w, "an unexpected error occurred")
	}
}
