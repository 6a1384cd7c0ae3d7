package ui

import (
	stderrors "errors"
	"net/http"

	"triagelens/domain/core"
	"triagelens/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error to the HTTP status and code reported to clients
func statusFor(err error) (int, string) {
	switch {
	case errors.IsParseError(err):
		return http.StatusUnprocessableEntity, errors.CodeParseError
	case core.IsNotFoundError(err):
		return http.StatusNotFound, errors.CodeNotFound
	case stderrors.Is(err, core.ErrUnknownOperator):
		return http.StatusBadRequest, errors.CodeInvalidInput
	}

	switch code := errors.GetCode(err); code {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest, code
	case errors.CodeNotFound:
		return http.StatusNotFound, code
	}
	return http.StatusInternalServerError, errors.CodeInternalError
}

func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
