package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAccountInactive    ErrCode = "ACCOUNT_INACTIVE"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrRefreshInvalid     ErrCode = "REFRESH_TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrNotExamOwner     ErrCode = "NOT_EXAM_OWNER"
	ErrNotAssigned      ErrCode = "NOT_ASSIGNED"
	ErrExaminerMismatch ErrCode = "EXAMINER_MISMATCH"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam lifecycle ────────────────────────────────────────────────
	ErrInvalidExamCode     ErrCode = "INVALID_EXAM_CODE"
	ErrExamNotActive       ErrCode = "EXAM_NOT_ACTIVE"
	ErrExamAlreadyActive   ErrCode = "EXAM_ALREADY_ACTIVE"
	ErrExamCompleted       ErrCode = "EXAM_ALREADY_COMPLETED"
	ErrExamNotSchedulable  ErrCode = "EXAM_NOT_SCHEDULABLE"
	ErrScheduleRequired    ErrCode = "SCHEDULE_REQUIRED"
	ErrScheduleInPast      ErrCode = "SCHEDULE_IN_PAST"
	ErrEndBeforeStart      ErrCode = "END_BEFORE_START"
	ErrLeadTimeTooShort    ErrCode = "LEAD_TIME_TOO_SHORT"
	ErrCodeNotGenerated    ErrCode = "CODE_NOT_GENERATED"
	ErrStartBeforeSchedule ErrCode = "START_BEFORE_SCHEDULE"
	ErrJoinClosed          ErrCode = "JOIN_CLOSED"

	// ─── Attempts ──────────────────────────────────────────────────────
	ErrAttemptStarted    ErrCode = "ATTEMPT_ALREADY_STARTED"
	ErrAttemptNotStarted ErrCode = "ATTEMPT_NOT_STARTED"
	ErrAttemptSubmitted  ErrCode = "ATTEMPT_ALREADY_SUBMITTED"
	ErrNoResults         ErrCode = "NO_RESULTS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrAccountInactive:
		return "This account has been deactivated."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrRefreshInvalid:
		return "Refresh token is invalid or has been revoked."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrNotExamOwner:
		return "You are not the conductor of this exam."
	case ErrNotAssigned:
		return "You are not assigned to this exam."
	case ErrExaminerMismatch:
		return "This exam is not from your examiner."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam lifecycle ────────────────────────────────────────────────
	case ErrInvalidExamCode:
		return "Invalid exam code."
	case ErrExamNotActive:
		return "Exam is not active yet. Please wait for the conductor to start it."
	case ErrExamAlreadyActive:
		return "Exam is already active."
	case ErrExamCompleted:
		return "Exam is already completed."
	case ErrExamNotSchedulable:
		return "Exam can no longer be scheduled in its current state."
	case ErrScheduleRequired:
		return "Please schedule the exam first."
	case ErrScheduleInPast:
		return "Scheduled start time must be in the future."
	case ErrEndBeforeStart:
		return "End time must be after start time."
	case ErrLeadTimeTooShort:
		return "Exam code must be generated at least 30 minutes before the scheduled start time."
	case ErrCodeNotGenerated:
		return "Please generate the exam code first."
	case ErrStartBeforeSchedule:
		return "Cannot start the exam before its scheduled time."
	case ErrJoinClosed:
		return "Students cannot join at this time."

	// ─── Attempts ──────────────────────────────────────────────────────
	case ErrAttemptStarted:
		return "You have already started this exam."
	case ErrAttemptNotStarted:
		return "Exam not started."
	case ErrAttemptSubmitted:
		return "Exam already submitted."
	case ErrNoResults:
		return "No results to export."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
