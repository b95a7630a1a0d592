package service

import "errors"

// Sentinel errors shared across services. Handlers translate these into
// response error codes.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrNotAuthorized = errors.New("not authorized")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRefresh     = errors.New("invalid refresh token")

	ErrExamNotSchedulable   = errors.New("exam cannot be scheduled in its current state")
	ErrScheduleInPast       = errors.New("scheduled start must be in the future")
	ErrEndBeforeStart       = errors.New("scheduled end must be after scheduled start")
	ErrScheduleRequired     = errors.New("exam has no schedule")
	ErrLeadTimeTooShort     = errors.New("exam code can only be generated at least 30 minutes before start")
	ErrCodeNotGenerated     = errors.New("exam code has not been generated")
	ErrExamAlreadyActive    = errors.New("exam is already active")
	ErrStartBeforeSchedule  = errors.New("exam cannot start before its scheduled time")
	ErrExamNotActive        = errors.New("exam is not active")
	ErrExamAlreadyCompleted = errors.New("exam is already completed")
	ErrExamNotEditable      = errors.New("exam cannot be modified in its current state")

	ErrInvalidExamCode  = errors.New("invalid exam code")
	ErrNotAssigned      = errors.New("student is not assigned to this exam")
	ErrExaminerMismatch = errors.New("exam belongs to a different examiner")
	ErrJoinClosed       = errors.New("exam is not accepting participants")

	ErrAttemptAlreadyStarted   = errors.New("attempt already started")
	ErrAttemptNotStarted       = errors.New("attempt has not been started")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrQuestionNotInExam       = errors.New("question does not belong to this exam")
	ErrNoResults               = errors.New("no results available")
)
