package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Daanveer10/medcAIr/models"
)

// ErrorKind classifies a failure once at the boundary; the HTTP status and
// the {"error": ...} payload are derived from it and propagated unchanged.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAccessDenied
	KindNotFound
	KindConflict
	KindUpstream
	KindInternal
)

type apiError struct {
	Kind    ErrorKind
	Message string
}

func (e *apiError) Error() string { return e.Message }

func validationErr(msg string) *apiError   { return &apiError{Kind: KindValidation, Message: msg} }
func accessDeniedErr(msg string) *apiError { return &apiError{Kind: KindAccessDenied, Message: msg} }
func notFoundErr(msg string) *apiError     { return &apiError{Kind: KindNotFound, Message: msg} }
func conflictErr(msg string) *apiError     { return &apiError{Kind: KindConflict, Message: msg} }
func internalErr(msg string) *apiError     { return &apiError{Kind: KindInternal, Message: msg} }

func (e *apiError) status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		// Conflicts surface as 400 with a specific message, the shape the
		// web client already distinguishes by text.
		return http.StatusBadRequest
	case KindAccessDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err *apiError) {
	c.JSON(err.status(), models.ErrorResponse{Error: err.Message})
}

// storeErr maps a persistence-layer error onto the taxonomy: timeouts become
// upstream failures, duplicate-key violations become conflicts, and anything
// else passes the store's message through.
func storeErr(err error) *apiError {
	if err == errQueryTimeout {
		return &apiError{Kind: KindUpstream, Message: "Database request timed out. Please try again."}
	}
	if isDuplicateErr(err) {
		return &apiError{Kind: KindConflict, Message: "Duplicate record"}
	}
	return internalErr(err.Error())
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique") ||
		strings.Contains(msg, "already exists")
}
