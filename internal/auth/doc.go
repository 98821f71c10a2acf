// Package auth provides authentication and authorisation for the JOJO
// liaison service.
//
// It implements a 3-tier role model (user → support → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens, validated by signature only
//   - Static role-permission mapping (compile-time, no database lookup)
//   - Ownership scoping for the user role: public robots plus owned robots
//
// Robot access checks happen before any existence check on the robot, so
// an unauthorised caller cannot discover which serials are provisioned.
package auth
