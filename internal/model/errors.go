package model

import "errors"

// Common errors used across the application. All of these are
// recoverable per-request: the session reports them to the caller and
// keeps serving the connection.
var (
	// Auth errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrAuthFailed    = errors.New("invalid username or password")
	ErrAlreadyOnline = errors.New("identity already has a live session")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrWrongRole     = errors.New("operation not permitted for this role")

	// Catalog errors
	ErrGameNotFound  = errors.New("game not found")
	ErrNotOwner      = errors.New("caller is not the game's author")
	ErrGameInUse     = errors.New("game is referenced by a live room")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// Request validation
	ErrBadRequest = errors.New("missing or invalid request fields")
)
