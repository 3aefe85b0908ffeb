// Package apperr provides coded errors shared by the game engine and the
// command layer.
package apperr

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeAlreadySignedUp means the player already holds a signup slot.
	CodeAlreadySignedUp Code = "ALREADY_SIGNED_UP"
	// CodeChannelBusy means another session owns the channel.
	CodeChannelBusy Code = "CHANNEL_BUSY"
	// CodeInsufficientPlayers means the roster is below the variant minimum.
	CodeInsufficientPlayers Code = "INSUFFICIENT_PLAYERS"
	// CodeIllegalGameState means the command is not allowed right now.
	CodeIllegalGameState Code = "ILLEGAL_GAME_STATE"
	// CodeNoSession means the channel has no session the command could act on.
	CodeNoSession Code = "NO_SESSION"
	// CodeInvalidArgument means the command arguments did not validate.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodePermissionDenied means the actor may not run the command.
	CodePermissionDenied Code = "PERMISSION_DENIED"
	// CodeInvariant means internal state was found inconsistent.
	CodeInvariant Code = "INVARIANT_VIOLATION"
	// CodeCorruptSnapshot means a persisted session could not be restored.
	CodeCorruptSnapshot Code = "CORRUPT_SNAPSHOT"
)

// UserFacing reports whether errors with this code are explained to the
// player instead of being logged as faults.
func (c Code) UserFacing() bool {
	switch c {
	case CodeAlreadySignedUp, CodeChannelBusy, CodeInsufficientPlayers,
		CodeIllegalGameState, CodeNoSession, CodeInvalidArgument, CodePermissionDenied:
		return true
	default:
		return false
	}
}

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Text shown to players for user-facing codes
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Illegal is shorthand for an ILLEGAL_GAME_STATE rejection.
func Illegal(message string) *Error {
	return New(CodeIllegalGameState, message)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsUserFacing reports whether err should be shown to the player verbatim.
func IsUserFacing(err error) bool {
	return CodeOf(err).UserFacing()
}

// Message returns the player-visible text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
