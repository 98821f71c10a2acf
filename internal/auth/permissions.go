package auth

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermRobotRead    Permission = "robot:read"
	PermRobotCommand Permission = "robot:command"
	PermRobotManage  Permission = "robot:manage"
	PermUserManage   Permission = "user:manage"
	PermAuditRead    Permission = "audit:read"
)

// rolePermissions maps each role to its granted permissions.
// This is the single source of truth for the authorisation model.
// The user role is additionally ownership-scoped per robot.
var rolePermissions = map[Role][]Permission{
	RoleUser: {
		PermRobotRead,
		PermRobotCommand, // ownership-scoped: public or owned robots only
	},
	RoleSupport: {
		PermRobotRead,
		PermRobotCommand,
		PermAuditRead,
	},
	RoleAdmin: {
		PermRobotRead,
		PermRobotCommand,
		PermRobotManage,
		PermUserManage,
		PermAuditRead,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns all permissions granted to a role.
// Returns nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}

// IsOwnershipScoped returns true if the role's robot access is limited to
// public and owned robots. Support and admin see the whole fleet.
func IsOwnershipScoped(role Role) bool {
	return role == RoleUser
}

// CanAccessRobot decides whether a user may see and command a robot.
//
// Admin and support bypass ownership scoping. Regular users reach public
// robots and robots they own. Callers evaluate this before revealing
// whether a robot exists at all, so a denied user cannot probe serials.
func CanAccessRobot(role Role, userID string, ownerID *string, isPublic bool) bool {
	if !IsOwnershipScoped(role) {
		return HasPermission(role, PermRobotCommand)
	}
	if isPublic {
		return true
	}
	return ownerID != nil && *ownerID == userID
}
