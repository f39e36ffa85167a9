package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harborcrm/flowboard/internal/apperr"
)

// statusFor maps error kinds to HTTP status codes.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound, apperr.KindColumnNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden, apperr.KindOwnerOnly:
		return http.StatusForbidden
	case apperr.KindInvalidPayload, apperr.KindInvalidKey, apperr.KindInvalidAssignee,
		apperr.KindInvalidSprint, apperr.KindInvalidEpic, apperr.KindInvalidComponents,
		apperr.KindInvalidOtherIssue:
		return http.StatusBadRequest
	case apperr.KindKeyTaken, apperr.KindWIPLimitReached, apperr.KindMissingAcceptance,
		apperr.KindMissingDescription, apperr.KindSprintHasOpenWork,
		apperr.KindCannotLinkSelf, apperr.KindMixedProjects:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// fail writes the structured error response: a stable kind string plus,
// for validation errors, the per-field constraint breakdown.
func fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	body := gin.H{"kind": string(kind)}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body["message"] = ae.Msg
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
		}
	}

	c.JSON(statusFor(kind), gin.H{"error": body})
}

// actor extracts the caller identity resolved by the upstream gateway.
func actor(c *gin.Context) string {
	return c.GetHeader("X-Actor-ID")
}

// requireActor aborts with forbidden when no identity header is present.
func requireActor(c *gin.Context) (string, bool) {
	id := actor(c)
	if id == "" {
		fail(c, apperr.New(apperr.KindForbidden, "missing X-Actor-ID header"))
		return "", false
	}
	return id, true
}
