package handler

import (
	"errors"
	"net/http"

	"paydesk/internal/apperr"
	"paydesk/pkg/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps domain error kinds to HTTP status codes. Unknown errors
// and storage failures become 500 with a generic message so infrastructure
// details never leak to clients.
func respondError(c *gin.Context, err error) {
	var validation *apperr.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, response.ErrorWithDetails(http.StatusBadRequest, "validation failed", validation.Violations))
		return
	}

	var notEditable *apperr.NotEditableError
	if errors.As(err, &notEditable) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, notEditable.Error()))
		return
	}

	var forbidden *apperr.ForbiddenError
	if errors.As(err, &forbidden) {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, forbidden.Error()))
		return
	}

	var notFound *apperr.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, notFound.Error()))
		return
	}

	var duplicate *apperr.DuplicateNameError
	if errors.As(err, &duplicate) {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, duplicate.Error()))
		return
	}

	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, conflict.Error()))
		return
	}

	log.WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
}
