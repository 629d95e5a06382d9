package protocol

import (
	"errors"

	"github.com/arcadelab/gamehub/internal/model"
)

// Wire reason codes for error responses
const (
	ReasonBadRequest    = "bad_request"
	ReasonAuthFailed    = "auth_failed"
	ReasonAlreadyOnline = "already_online"
	ReasonUserExists    = "user_exists"
	ReasonNotLoggedIn   = "not_logged_in"
	ReasonWrongRole     = "wrong_role"
	ReasonGameNotFound  = "game_not_found"
	ReasonRoomNotFound  = "room_not_found"
	ReasonRoomFull      = "room_full"
	ReasonNotOwner      = "not_owner"
	ReasonGameInUse     = "game_in_use"
	ReasonBadRating     = "bad_rating"
	ReasonUnknownAction = "unknown_action"
	ReasonInternal      = "internal_error"
)

// ReasonFor maps a model error to its wire reason code. Unrecognized
// errors map to internal_error so storage or process failures never leak
// details to clients.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, model.ErrBadRequest):
		return ReasonBadRequest
	case errors.Is(err, model.ErrAuthFailed):
		return ReasonAuthFailed
	case errors.Is(err, model.ErrAlreadyOnline):
		return ReasonAlreadyOnline
	case errors.Is(err, model.ErrUserExists):
		return ReasonUserExists
	case errors.Is(err, model.ErrNotLoggedIn):
		return ReasonNotLoggedIn
	case errors.Is(err, model.ErrWrongRole):
		return ReasonWrongRole
	case errors.Is(err, model.ErrGameNotFound):
		return ReasonGameNotFound
	case errors.Is(err, model.ErrRoomNotFound):
		return ReasonRoomNotFound
	case errors.Is(err, model.ErrRoomFull):
		return ReasonRoomFull
	case errors.Is(err, model.ErrNotOwner):
		return ReasonNotOwner
	case errors.Is(err, model.ErrGameInUse):
		return ReasonGameInUse
	case errors.Is(err, model.ErrInvalidRating):
		return ReasonBadRating
	case errors.Is(err, model.ErrUserNotFound):
		return ReasonAuthFailed
	default:
		return ReasonInternal
	}
}
