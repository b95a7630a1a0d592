package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusworks/examportal-backend/internal/response"
	"github.com/campusworks/examportal-backend/internal/service"
)

// failFromErr maps service sentinel errors onto HTTP statuses and API
// error codes. Unknown errors become a 500.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotAuthorized):
		response.Fail(c, http.StatusForbidden, response.ErrNotExamOwner)

	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrAccountInactive):
		response.Fail(c, http.StatusForbidden, response.ErrAccountInactive)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrInvalidRefresh):
		response.Fail(c, http.StatusUnauthorized, response.ErrRefreshInvalid)

	case errors.Is(err, service.ErrExamNotSchedulable):
		response.Fail(c, http.StatusConflict, response.ErrExamNotSchedulable)
	case errors.Is(err, service.ErrScheduleInPast):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrScheduleInPast)
	case errors.Is(err, service.ErrEndBeforeStart):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrEndBeforeStart)
	case errors.Is(err, service.ErrScheduleRequired):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrScheduleRequired)
	case errors.Is(err, service.ErrLeadTimeTooShort):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrLeadTimeTooShort)
	case errors.Is(err, service.ErrCodeNotGenerated):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrCodeNotGenerated)
	case errors.Is(err, service.ErrExamAlreadyActive):
		response.Fail(c, http.StatusConflict, response.ErrExamAlreadyActive)
	case errors.Is(err, service.ErrStartBeforeSchedule):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrStartBeforeSchedule)
	case errors.Is(err, service.ErrExamNotActive):
		response.Fail(c, http.StatusConflict, response.ErrExamNotActive)
	case errors.Is(err, service.ErrExamAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrExamCompleted)
	case errors.Is(err, service.ErrExamNotEditable):
		response.Fail(c, http.StatusConflict, response.ErrConflict)

	case errors.Is(err, service.ErrInvalidExamCode):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidExamCode)
	case errors.Is(err, service.ErrNotAssigned):
		response.Fail(c, http.StatusForbidden, response.ErrNotAssigned)
	case errors.Is(err, service.ErrExaminerMismatch):
		response.Fail(c, http.StatusForbidden, response.ErrExaminerMismatch)
	case errors.Is(err, service.ErrJoinClosed):
		response.Fail(c, http.StatusConflict, response.ErrJoinClosed)

	case errors.Is(err, service.ErrAttemptAlreadyStarted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptStarted)
	case errors.Is(err, service.ErrAttemptNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotStarted)
	case errors.Is(err, service.ErrAttemptAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptSubmitted)
	case errors.Is(err, service.ErrQuestionNotInExam):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation)
	case errors.Is(err, service.ErrNoResults):
		response.Fail(c, http.StatusNotFound, response.ErrNoResults)

	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// pathUUID parses a UUID path parameter, failing the request on bad input.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
