package supervise

import "errors"

// Launch refusal and failure conditions. These are wrapped with role and
// port context at the point of refusal; callers match with errors.Is.
var (
	// ErrAlreadyRunning means the requested role's port is already bound.
	ErrAlreadyRunning = errors.New("already running")

	// ErrRoleConflict means an individual-role launch was refused because
	// the sibling role's port is bound. Joint sessions are exempt.
	ErrRoleConflict = errors.New("conflicting role is running")

	// ErrLaunchFailure means the role's command could not be spawned.
	ErrLaunchFailure = errors.New("launch failed")
)
