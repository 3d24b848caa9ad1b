package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medisuite/hms-api/pkg/errors"
)

// AbortWithError translates service errors into HTTP responses. Known
// application errors keep their message; anything else becomes a 500
// without leaking internals.
func AbortWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		c.AbortWithStatusJSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
