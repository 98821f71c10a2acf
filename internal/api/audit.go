package api

import (
	"net/http"
	"strconv"

	"github.com/jojo-robotics/liaison/internal/audit"
	"github.com/jojo-robotics/liaison/internal/auth"
)

// handleListAudit returns paginated audit log entries with optional filters.
// Requires the audit read permission (support and admin roles).
//
// Query parameters:
//   - action: filter by action type (command, login, robot_create, robot_update)
//   - serial: filter by robot serial
//   - user_id: filter by acting user
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if !auth.HasPermission(principal.Role, auth.PermAuditRead) {
		writeForbidden(w, "audit access requires support or admin role")
		return
	}

	if s.audit == nil {
		writeInternalError(w, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:      q.Get("action"),
		RobotSerial: q.Get("serial"),
		UserID:      q.Get("user_id"),
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
