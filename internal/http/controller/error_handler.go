package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/http/dto"
)

func respondError(ctx *gin.Context, statusCode int, err error) {
	ctx.JSON(statusCode, dto.NewErrorResponse(err))
}

// HandleError is the single place core errors become HTTP status codes
// (§7). entity.ErrFieldInfoNotReady additionally carries a Retry-After
// header, set by the caller before invoking this.
func HandleError(ctx *gin.Context, err error) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		slog.ErrorContext(ctx.Request.Context(), "unhandled error", slog.Any("error", err))
	}
	respondError(ctx, statusCode, err)
}

func mapErrorToStatusCode(err error) int {
	switch {
	case is404Error(err):
		return http.StatusNotFound
	case is401Error(err):
		return http.StatusUnauthorized
	case is413Error(err):
		return http.StatusRequestEntityTooLarge
	case is415Error(err):
		return http.StatusUnsupportedMediaType
	case is406Error(err):
		return http.StatusNotAcceptable
	case is503Error(err):
		return http.StatusServiceUnavailable
	case is400Error(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func is404Error(err error) bool {
	return errors.Is(err, entity.ErrNotFound) ||
		errors.Is(err, entity.ErrDocumentNotFound) ||
		errors.Is(err, entity.ErrUserNotFound) ||
		errors.Is(err, entity.ErrFieldNotFound) ||
		errors.Is(err, entity.ErrBusinessNotFound) ||
		errors.Is(err, entity.ErrAccessURINotFound) ||
		errors.Is(err, entity.ErrRenderedPageNotFound)
}

func is401Error(err error) bool {
	return errors.Is(err, entity.ErrUnauthorized) ||
		errors.Is(err, entity.ErrForbidden) ||
		errors.Is(err, entity.ErrInvalidCredentials) ||
		errors.Is(err, entity.ErrAccessURIRevoked) ||
		errors.Is(err, entity.ErrTokenScopeMismatch) ||
		errors.Is(err, entity.ErrFieldDoesNotBelongToCaller)
}

func is413Error(err error) bool {
	return errors.Is(err, entity.ErrPayloadTooLarge)
}

func is415Error(err error) bool {
	return errors.Is(err, entity.ErrUnsupportedContentType)
}

func is406Error(err error) bool {
	return errors.Is(err, entity.ErrNotAcceptable)
}

func is503Error(err error) bool {
	return errors.Is(err, entity.ErrFieldInfoNotReady) ||
		errors.Is(err, entity.ErrUpstream)
}

func is400Error(err error) bool {
	return errors.Is(err, entity.ErrInvalidInput) ||
		errors.Is(err, entity.ErrInvalidSignators) ||
		errors.Is(err, entity.ErrInvalidEmail) ||
		errors.Is(err, entity.ErrEmptyPassword) ||
		errors.Is(err, entity.ErrUserAlreadyExists) ||
		errors.Is(err, entity.ErrUserDeleted) ||
		errors.Is(err, entity.ErrUserNotDeleted) ||
		errors.Is(err, entity.ErrUserHasNoPassword) ||
		errors.Is(err, entity.ErrUnknownSignatorField) ||
		errors.Is(err, entity.ErrInvalidFieldType) ||
		errors.Is(err, entity.ErrParentMustBeDate) ||
		errors.Is(err, entity.ErrUnknownParentField) ||
		errors.Is(err, entity.ErrParentNotSignatureOrText) ||
		errors.Is(err, entity.ErrUnsupportedDependentType) ||
		errors.Is(err, entity.ErrUserNotOnDocument) ||
		errors.Is(err, entity.ErrNoSignableFields) ||
		errors.Is(err, entity.ErrConflict)
}
