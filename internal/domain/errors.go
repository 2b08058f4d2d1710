package domain

import "errors"

var (
	// ErrProviderUnavailable is returned when the question provider cannot be
	// reached or returns an unparseable response.
	ErrProviderUnavailable = errors.New("question provider unavailable")
	// ErrNoQuestions is returned when the provider succeeded but had no
	// questions for the requested configuration.
	ErrNoQuestions = errors.New("no questions available")
	// ErrSessionNotFound is returned when no in-progress session exists for the user.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrResultNotFound is returned when no finalized result is stored for the user.
	ErrResultNotFound = errors.New("quiz result not found")
	// ErrQuizInProgress rejects starting a quiz while an incomplete one exists.
	ErrQuizInProgress = errors.New("a quiz is already in progress")
	// ErrStaleSubmission rejects an answer for an index other than the current one.
	ErrStaleSubmission = errors.New("answer submitted for a stale question index")
	// ErrCorruptState indicates a persisted record failed structural validation.
	ErrCorruptState = errors.New("persisted quiz state is corrupt")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateRegistration indicates the email is already registered.
	ErrDuplicateRegistration = errors.New("email already registered")
)
