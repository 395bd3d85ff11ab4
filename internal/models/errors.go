package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound         = errors.New("resource not found") // General not found
	ErrPlayNotFound     = errors.New("play episode not found")
	ErrEpisodeNotFound  = errors.New("episode not found")
	ErrDialogueNotFound = errors.New("dialogue not found")

	// User & Authentication Errors
	ErrUnauthorized  = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden     = errors.New("forbidden")    // Authenticated, but lacks permission
	ErrNotYourPlay   = errors.New("not your play episode")
	ErrPlayNotActive = errors.New("play episode is not active")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Slot & AI Errors
	ErrEmptyUserInput   = errors.New("user input must not be empty")
	ErrActiveSlotExists = errors.New("another slot is already active for this play")
	ErrAIInvalidJSON    = errors.New("ai returned invalid json")
	ErrAIInvalidShape   = errors.New("ai response failed validation")

	// Completion & Result Errors
	ErrResultNotReady = errors.New("result not ready")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
	ErrInvalidCursor  = errors.New("invalid pagination cursor")
)
