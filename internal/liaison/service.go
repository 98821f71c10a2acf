package liaison

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jojo-robotics/liaison/internal/audit"
	"github.com/jojo-robotics/liaison/internal/auth"
	"github.com/jojo-robotics/liaison/internal/robot"
)

// Principal identifies the caller of a façade operation.
type Principal struct {
	UserID string
	Role   auth.Role
}

// directory is the slice of the robot registry the façade needs.
type directory interface {
	Get(ctx context.Context, serial string) (*robot.Robot, error)
	List(ctx context.Context) ([]robot.Robot, error)
}

// commandPublisher is the publisher seam, replaceable in tests.
type commandPublisher interface {
	Publish(serial, action string, value any) Outcome
}

// auditor records command activity. Optional.
type auditor interface {
	Create(ctx context.Context, entry *audit.Entry) error
}

// Service is the command façade: the only entry point the web layer
// calls. All authorization and validation for robot commands happens
// here and nowhere else.
type Service struct {
	robots    directory
	publisher commandPublisher
	audit     auditor // nil disables the audit trail
	logger    *slog.Logger
}

// NewService creates the command façade. Pass a nil auditor to disable
// audit logging.
func NewService(robots directory, publisher commandPublisher, auditRepo auditor, logger *slog.Logger) *Service {
	return &Service{
		robots:    robots,
		publisher: publisher,
		audit:     auditRepo,
		logger:    logger,
	}
}

// SendCommand validates and publishes one command to a robot.
//
// Checks run in a fixed order, each short-circuiting with its own error:
// authorization, then existence, then the active flag, then command
// validation, then the publish itself. Authorization is evaluated before
// anything about the robot's existence is revealed, so an unauthorized
// caller cannot probe which serials are provisioned.
//
// A nil return means the command was accepted by the local broker
// session, not that the robot received it. End-to-end confirmation
// comes from the robot's next status message.
func (s *Service) SendCommand(ctx context.Context, p Principal, serial, action string, value any) error {
	bot, err := s.resolveRobot(ctx, p, serial)
	if err != nil {
		return err
	}

	if !bot.Active {
		return ErrRobotInactive
	}

	if action == "" {
		return ErrInvalidCommand
	}

	outcome := s.publisher.Publish(serial, action, value)
	if !outcome.Accepted {
		return outcome.Err
	}

	s.logger.Info("command accepted", "serial", serial, "action", action, "user_id", p.UserID)
	s.recordCommand(ctx, p, serial, action, value)
	return nil
}

// RobotStatus returns a copy of the robot's record including its last
// known state. Same authorization ordering as SendCommand.
func (s *Service) RobotStatus(ctx context.Context, p Principal, serial string) (*robot.Robot, error) {
	return s.resolveRobot(ctx, p, serial)
}

// ListRobots returns the robots visible to the principal: the whole
// fleet for support and admin, public plus owned robots for users.
func (s *Service) ListRobots(ctx context.Context, p Principal) ([]robot.Robot, error) {
	all, err := s.robots.List(ctx)
	if err != nil {
		return nil, err
	}

	if !auth.IsOwnershipScoped(p.Role) {
		return all, nil
	}

	visible := make([]robot.Robot, 0, len(all))
	for _, bot := range all {
		if auth.CanAccessRobot(p.Role, p.UserID, bot.OwnerID, bot.Public) {
			visible = append(visible, bot)
		}
	}
	return visible, nil
}

// StateObserver returns a predicate deciding which principals may
// receive state updates for the given robot. The robot is resolved
// once; the returned predicate is cheap and safe to call once per
// subscriber on the broadcast path.
func (s *Service) StateObserver(ctx context.Context, serial string) func(p Principal) bool {
	bot, err := s.robots.Get(ctx, serial)
	if err != nil {
		// Updates for a serial the registry does not know are only
		// shown to fleet-wide roles.
		return func(p Principal) bool { return !auth.IsOwnershipScoped(p.Role) }
	}
	ownerID, public := bot.OwnerID, bot.Public
	return func(p Principal) bool {
		return auth.CanAccessRobot(p.Role, p.UserID, ownerID, public)
	}
}

// resolveRobot looks up a robot and runs the authorization check,
// keeping the no-existence-oracle ordering in one place.
func (s *Service) resolveRobot(ctx context.Context, p Principal, serial string) (*robot.Robot, error) {
	bot, err := s.robots.Get(ctx, serial)
	if err != nil {
		if errors.Is(err, robot.ErrNotFound) {
			// Unprivileged callers get the same answer for "does not
			// exist" and "not yours".
			if auth.IsOwnershipScoped(p.Role) {
				return nil, ErrUnauthorized
			}
			return nil, ErrRobotNotFound
		}
		return nil, err
	}

	if !auth.CanAccessRobot(p.Role, p.UserID, bot.OwnerID, bot.Public) {
		return nil, ErrUnauthorized
	}

	return bot, nil
}

// recordCommand writes the audit entry for an accepted command.
// Best effort: a failed audit write is logged, never surfaced.
func (s *Service) recordCommand(ctx context.Context, p Principal, serial, action string, value any) {
	if s.audit == nil {
		return
	}

	details := map[string]any{"action": action}
	if value != nil {
		details["value"] = value
	}

	entry := &audit.Entry{
		Action:      audit.ActionCommand,
		RobotSerial: serial,
		UserID:      p.UserID,
		Details:     details,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Error("audit write failed", "serial", serial, "error", err)
	}
}
