package webhttp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/session"
)

// statusFor maps an error to its HTTP status and outcome kind.
func statusFor(err error) (int, string) {
	kind := session.ErrorKind(err)
	switch kind {
	case session.KindStale, session.KindNotInitialized:
		return http.StatusConflict, kind
	case session.KindPayload, session.KindNonFiniteRange:
		return http.StatusUnprocessableEntity, kind
	case session.KindUnknownSession:
		return http.StatusNotFound, kind
	case session.KindIncomplete:
		return http.StatusBadRequest, kind
	case string(prediction.KindCircuitOpen):
		return http.StatusServiceUnavailable, kind
	}
	var fe *prediction.FetchError
	if errors.As(err, &fe) {
		return http.StatusBadGateway, kind
	}
	return http.StatusInternalServerError, kind
}

func writeError(c *gin.Context, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Named("http").Warnf("%s %s failed (%s): %v", c.Request.Method, c.Request.URL.Path, kind, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
