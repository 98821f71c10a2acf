package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jojo-robotics/liaison/internal/liaison"
)

// commandRequest is the request body for POST /robots/{serial}/command.
type commandRequest struct {
	Action string `json:"action"`
	Value  any    `json:"value,omitempty"`
}

// handleListRobots returns the robots visible to the caller.
// Ownership-scoped callers see only their own robots and public ones.
func (s *Server) handleListRobots(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	robots, err := s.liaison.ListRobots(r.Context(), principal)
	if err != nil {
		s.logger.Error("failed to list robots", "error", err)
		writeInternalError(w, "failed to list robots")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"robots": robots, "count": len(robots)})
}

// handleGetRobot returns a single robot by serial.
func (s *Server) handleGetRobot(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	serial := chi.URLParam(r, "serial")

	rob, err := s.liaison.RobotStatus(r.Context(), principal, serial)
	if err != nil {
		s.writeLiaisonError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rob)
}

// handleRobotStatus returns the last known state of a robot.
func (s *Server) handleRobotStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	serial := chi.URLParam(r, "serial")

	rob, err := s.liaison.RobotStatus(r.Context(), principal, serial)
	if err != nil {
		s.writeLiaisonError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"serial": rob.Serial,
		"state":  rob.State,
	})
}

// handleSendCommand dispatches a command to a robot over the broker.
// A 202 means the command was accepted for delivery, not that the
// robot has executed it.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	serial := chi.URLParam(r, "serial")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.liaison.SendCommand(r.Context(), principal, serial, req.Action, req.Value); err != nil {
		s.writeLiaisonError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"serial":   serial,
		"action":   req.Action,
		"accepted": true,
	})
}

// writeLiaisonError maps liaison service errors onto HTTP responses.
func (s *Server) writeLiaisonError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, liaison.ErrUnauthorized):
		writeForbidden(w, "access denied")
	case errors.Is(err, liaison.ErrRobotNotFound):
		writeNotFound(w, "robot not found")
	case errors.Is(err, liaison.ErrRobotInactive):
		writeError(w, http.StatusConflict, "robot_inactive", "robot is not active")
	case errors.Is(err, liaison.ErrInvalidCommand):
		writeBadRequest(w, "command action is required")
	default:
		if terr, ok := liaison.AsTransportError(err); ok {
			s.writeTransportError(w, terr)
			return
		}
		s.logger.Error("liaison request failed", "error", err)
		writeInternalError(w, "request failed")
	}
}

// writeTransportError maps broker transport failures onto HTTP responses.
func (s *Server) writeTransportError(w http.ResponseWriter, terr *liaison.TransportError) {
	switch terr.Kind {
	case liaison.TransportNotConnected:
		writeError(w, http.StatusServiceUnavailable, "broker_unavailable", "broker connection is down")
	case liaison.TransportPublishRejected:
		writeError(w, http.StatusBadGateway, "broker_unavailable", "broker rejected the command")
	default:
		s.logger.Error("command serialization failed", "error", terr)
		writeInternalError(w, "failed to encode command")
	}
}
