package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/macacolandia/dashboard-api/internal/models"
	pkghttp "github.com/macacolandia/dashboard-api/pkg/http"
)

// SecurityLogQueryInterface is the security log read surface.
type SecurityLogQueryInterface interface {
	Query(ctx context.Context, filter models.SecurityLogFilter) ([]*models.SecurityLogEntry, error)
}

// ActivityLogQueryInterface is the activity log read surface.
type ActivityLogQueryInterface interface {
	ListActivity(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error)
}

// LogHandler serves the admin log inspection endpoints.
type LogHandler struct {
	securityLogs SecurityLogQueryInterface
	activityLogs ActivityLogQueryInterface
}

func NewLogHandler(securityLogs SecurityLogQueryInterface, activityLogs ActivityLogQueryInterface) *LogHandler {
	return &LogHandler{
		securityLogs: securityLogs,
		activityLogs: activityLogs,
	}
}

// SecurityLogResponse is one security event row.
type SecurityLogResponse struct {
	ID        int64     `json:"id"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"`
	Email     *string   `json:"email,omitempty"`
	IPAddress string    `json:"ip_address"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// SecurityLogs handles GET /api/admin/security-logs with optional
// severity, event_type, email and limit query parameters.
func (h *LogHandler) SecurityLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SecurityLogFilter{
		Severity:  q.Get("severity"),
		EventType: q.Get("event_type"),
		Email:     q.Get("email"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			pkghttp.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.securityLogs.Query(r.Context(), filter)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to query security logs")
		return
	}

	out := make([]SecurityLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, SecurityLogResponse{
			ID:        e.ID,
			EventType: e.EventType,
			Severity:  e.Severity,
			Email:     e.Email,
			IPAddress: e.IPAddress,
			Details:   e.Details,
			Timestamp: e.Timestamp,
		})
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": out})
}

// ActivityLogResponse is one admin activity row with joined account info.
type ActivityLogResponse struct {
	ID           int64     `json:"id"`
	AccountID    *string   `json:"account_id,omitempty"`
	AccountName  *string   `json:"account_name,omitempty"`
	AccountEmail *string   `json:"account_email,omitempty"`
	Action       string    `json:"action"`
	Details      *string   `json:"details,omitempty"`
	IPAddress    *string   `json:"ip_address,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ActivityLogs handles GET /api/admin/logs.
func (h *LogHandler) ActivityLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			pkghttp.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.activityLogs.ListActivity(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to query activity logs")
		return
	}

	out := make([]ActivityLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityLogResponse{
			ID:           e.ID,
			AccountID:    e.AccountID,
			AccountName:  e.AccountName,
			AccountEmail: e.AccountEmail,
			Action:       e.Action,
			Details:      e.Details,
			IPAddress:    e.IPAddress,
			Timestamp:    e.Timestamp,
		})
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": out})
}
