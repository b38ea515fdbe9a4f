package storefront

import "errors"

// Authentication errors
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrUserNotFound      = errors.New("user not found")
)

// Ledger errors. Unavailable means the ownership question could not be
// answered; callers must treat it as unknown, never as "not owned".
var (
	ErrLedgerUnavailable  = errors.New("purchase ledger unavailable")
	ErrLedgerUnauthorized = errors.New("purchase ledger rejected credentials")
	ErrLedgerConflict     = errors.New("purchase already recorded")
)

// Workflow errors
var (
	ErrAttemptInFlight = errors.New("a purchase attempt is already in progress")
	ErrInvalidState    = errors.New("operation not allowed in current workflow state")
)
