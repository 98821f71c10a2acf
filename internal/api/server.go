// Package api provides the HTTP REST API and WebSocket server for the
// JOJO liaison service.
//
// It exposes the robot fleet, command dispatch, and live status updates
// to the household web and mobile clients. All robot operations go
// through the liaison command façade; the API layer itself never talks
// to the broker.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jojo-robotics/liaison/internal/audit"
	"github.com/jojo-robotics/liaison/internal/auth"
	"github.com/jojo-robotics/liaison/internal/infrastructure/config"
	"github.com/jojo-robotics/liaison/internal/infrastructure/logging"
	"github.com/jojo-robotics/liaison/internal/liaison"
	"github.com/jojo-robotics/liaison/internal/robot"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// BrokerStatus reports broker connectivity for the health endpoint.
type BrokerStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Auth     *auth.Service
	Liaison  *liaison.Service
	Audit    audit.Repository // optional, nil disables /audit
	Broker   BrokerStatus     // optional, nil omits broker state from /health
	Version  string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// All methods are safe for concurrent use.
type Server struct {
	cfg     config.APIConfig
	secCfg  config.SecurityConfig
	logger  *logging.Logger
	auth    *auth.Service
	liaison *liaison.Service
	audit   audit.Repository
	broker  BrokerStatus
	version string

	server  *http.Server
	hub     *Hub
	tickets *ticketStore
	cancel  context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Liaison == nil {
		return nil, fmt.Errorf("liaison service is required")
	}

	return &Server{
		cfg:     deps.Config,
		secCfg:  deps.Security,
		logger:  deps.Logger,
		auth:    deps.Auth,
		liaison: deps.Liaison,
		audit:   deps.Audit,
		broker:  deps.Broker,
		version: deps.Version,
		tickets: newTicketStore(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, the ticket cleanup loop, and the HTTP
// listener in background goroutines. Stop with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.cfg.WebSocket, s.logger)
	go s.hub.Run(srvCtx)
	go s.tickets.cleanLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// BroadcastState fans a robot state update out to subscribed WebSocket
// clients. Wired as the status ingest's update hook; must not block.
//
// Each recipient is checked against the robot's visibility before the
// frame is sent, so a user never sees updates for a robot they could
// not fetch through the REST API.
func (s *Server) BroadcastState(serial string, state robot.State) {
	if s.hub == nil {
		return
	}
	allowed := s.liaison.StateObserver(context.Background(), serial)
	s.hub.BroadcastWhere(ChannelRobotState, map[string]any{
		"serial": serial,
		"state":  state,
	}, func(userID string, role auth.Role) bool {
		return allowed(liaison.Principal{UserID: userID, Role: role})
	})
}

// Close gracefully shuts down the API server.
// It waits up to gracefulShutdownTimeout for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
