package robot

import "time"

// Robot represents a household robot managed by the liaison.
// This matches the robots table in migrations/20260301_120000_initial_schema.up.sql.
type Robot struct {
	// Serial is the unique identifier and the topic namespace segment on
	// the broker. It never changes after creation.
	Serial string `json:"serial"`
	Name   string `json:"name"`

	// OwnerID is the user that owns this robot, if any.
	OwnerID *string `json:"owner_id,omitempty"`

	// Public robots are visible and controllable by any authenticated user.
	Public bool `json:"is_public"`

	// Active is the administrative enable flag. Commands to inactive
	// robots are rejected before reaching the broker.
	Active bool `json:"is_active"`

	// State is the last known status, written only by the status ingest.
	State State `json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State is the robot's last reported status snapshot.
//
// Ownership: only the status ingest mutates State (single-writer
// discipline); every reader receives an independent copy, never a reference
// into the registry cache.
type State struct {
	Online       bool       `json:"is_online"`
	BatteryLevel int        `json:"battery_level"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
}

// Clone creates an independent copy of the Robot.
// Pointer fields are re-pointed at copies so mutations of the clone never
// reach the registry cache.
func (r *Robot) Clone() *Robot {
	if r == nil {
		return nil
	}

	cpy := *r

	if r.OwnerID != nil {
		owner := *r.OwnerID
		cpy.OwnerID = &owner
	}
	cpy.State = r.State.Clone()

	return &cpy
}

// Clone creates an independent copy of the State.
func (s State) Clone() State {
	cpy := s
	if s.LastSeen != nil {
		seen := *s.LastSeen
		cpy.LastSeen = &seen
	}
	return cpy
}
