package domain

import "errors"

var (
	// ErrUserExists is returned when a user id is already taken inside a room.
	ErrUserExists = errors.New("user already exists in room")

	// ErrNotScrumMasterToggle and ErrNotScrumMasterTask guard the two
	// facilitator-only actions. Their text is sent to clients verbatim.
	ErrNotScrumMasterToggle = errors.New("Only Scrum Master can toggle votes")
	ErrNotScrumMasterTask   = errors.New("Only Scrum Master can start new task")
)

// IsPermissionError reports whether err is one of the facilitator-gating errors.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrNotScrumMasterToggle) || errors.Is(err, ErrNotScrumMasterTask)
}
