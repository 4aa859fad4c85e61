package service

import "errors"

// Policy violations. Distinct from validation and precondition failures so
// handlers can map them to 403.
var ErrForbidden = errors.New("operation not permitted for this actor")

// Not-found errors.
var (
	ErrPlacementNotFound = errors.New("placement not found")
	ErrJournalNotFound   = errors.New("journal entry not found")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrStudentNotFound   = errors.New("student profile not found")
	ErrTeacherNotFound   = errors.New("teacher profile not found")
)

// Validation errors (bad input shape or range).
var (
	ErrInvalidScore        = errors.New("final score must be between 0 and 100")
	ErrInvalidPeriod       = errors.New("end date must not be before start date")
	ErrInvalidStatus       = errors.New("unknown placement status")
	ErrDescriptionTooShort = errors.New("activity description must be at least 50 characters")
)

// Precondition errors (state machine violations).
var (
	ErrActivePlacementExists = errors.New("student already has an aktif placement")
	ErrDuplicateApplication  = errors.New("an open application for this company already exists")
	ErrInvalidTransition     = errors.New("placement status does not allow this transition")
	ErrNoActivePlacement     = errors.New("placement is not aktif")
	ErrFutureDateNotAllowed  = errors.New("journal date must not be in the future")
	ErrAlreadyReviewed       = errors.New("journal entry has already been reviewed")
	ErrConcurrentUpdate      = errors.New("entity was modified concurrently, retry the operation")
)
