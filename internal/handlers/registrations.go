package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/macacolandia/dashboard-api/internal/models"
	pkghttp "github.com/macacolandia/dashboard-api/pkg/http"
)

// RegistrationAdminInterface is the approve/reject surface consumed by
// the admin handler.
type RegistrationAdminInterface interface {
	ListPending(ctx context.Context) ([]*models.PendingRegistration, error)
	Approve(ctx context.Context, id string) (*models.PendingRegistration, error)
	Reject(ctx context.Context, id string) error
}

// RegistrationHandler serves the admin registration review endpoints.
type RegistrationHandler struct {
	registrations RegistrationAdminInterface
}

func NewRegistrationHandler(registrations RegistrationAdminInterface) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// RegistrationResponse is the admin view of a pending registration.
type RegistrationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	Status      string    `json:"status"`
}

// List handles GET /api/admin/registrations.
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	pending, err := h.registrations.ListPending(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list registrations")
		return
	}

	out := make([]RegistrationResponse, 0, len(pending))
	for _, reg := range pending {
		out = append(out, RegistrationResponse{
			ID:          reg.ID,
			Name:        reg.Name,
			Email:       reg.Email,
			IPAddress:   reg.IPAddress,
			RequestedAt: reg.RequestedAt,
			Status:      reg.Status,
		})
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"registrations": out})
}

// RegistrationDecisionRequest is the admin decision body.
type RegistrationDecisionRequest struct {
	RegistrationID string `json:"registrationId" validate:"required"`
	Action         string `json:"action" validate:"required,oneof=approve reject"`
}

// Decide handles POST /api/admin/registrations.
func (h *RegistrationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req RegistrationDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	var err error
	if req.Action == "approve" {
		_, err = h.registrations.Approve(r.Context(), req.RegistrationID)
	} else {
		err = h.registrations.Reject(r.Context(), req.RegistrationID)
	}
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "registration is not pending")
		case errors.Is(err, models.ErrConflict):
			// Email was taken while the registration waited; it is now
			// marked rejected.
			pkghttp.WriteConflict(w, "email already registered; registration was rejected")
		default:
			pkghttp.WriteInternalError(w, "an unexpected error occurred")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
