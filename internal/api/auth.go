package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/jojo-robotics/liaison/internal/audit"
	"github.com/jojo-robotics/liaison/internal/auth"
)

// ticketTTL is how long a WebSocket ticket is valid.
const ticketTTL = 60 * time.Second

// ticketCleanInterval is how often expired tickets are purged.
const ticketCleanInterval = time.Minute

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

// handleLogin authenticates a user and returns a JWT access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, user, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserInactive) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	s.recordLogin(r.Context(), user)

	ttl := s.secCfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60, // seconds
		Role:        string(user.Role),
	})
}

// recordLogin writes the audit entry for a successful login. Best effort.
func (s *Server) recordLogin(ctx context.Context, user *auth.User) {
	if s.audit == nil {
		return
	}
	entry := &audit.Entry{
		Action: audit.ActionLogin,
		UserID: user.ID,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Error("audit write failed", "action", "login", "error", err)
	}
}

// ticketStore holds pending WebSocket authentication tickets.
// Tickets are single-use, expire after ticketTTL, and carry the
// identity of the user who requested them.
type ticketStore struct {
	tickets map[string]ticketEntry
	mu      sync.Mutex
}

type ticketEntry struct {
	userID    string
	role      auth.Role
	expiresAt time.Time
}

func newTicketStore() *ticketStore {
	return &ticketStore{tickets: make(map[string]ticketEntry)}
}

// issue creates a ticket bound to the given identity.
func (ts *ticketStore) issue(userID string, role auth.Role) string {
	ticket := generateTicket()
	ts.mu.Lock()
	ts.tickets[ticket] = ticketEntry{
		userID:    userID,
		role:      role,
		expiresAt: time.Now().Add(ticketTTL),
	}
	ts.mu.Unlock()
	return ticket
}

// consume validates a ticket and removes it (single-use).
func (ts *ticketStore) consume(ticket string) (ticketEntry, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry, ok := ts.tickets[ticket]
	if !ok {
		return ticketEntry{}, false
	}
	delete(ts.tickets, ticket)

	if time.Now().After(entry.expiresAt) {
		return ticketEntry{}, false
	}
	return entry, true
}

// cleanLoop periodically purges expired tickets until ctx is cancelled.
func (ts *ticketStore) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(ticketCleanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ts.clean()
		}
	}
}

func (ts *ticketStore) clean() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	for ticket, entry := range ts.tickets {
		if now.After(entry.expiresAt) {
			delete(ts.tickets, ticket)
		}
	}
}

// handleWSTicket generates a single-use WebSocket authentication ticket.
// The client uses it to authenticate the WebSocket upgrade without
// exposing the JWT in the URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	ticket := s.tickets.issue(principal.UserID, principal.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL.Seconds()),
	})
}

// ticketBytes is the number of random bytes used for WebSocket tickets.
const ticketBytes = 32

// generateTicket creates a cryptographically random ticket string.
func generateTicket() string {
	b := make([]byte, ticketBytes)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
