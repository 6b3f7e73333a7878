package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/httpmiddleware"
	"academia/internal/validation"
)

const internalMessage = "internal server error"

func ok(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, gin.H{"success": true, "message": msg, "data": data})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalid, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. Errors without a kind are logged and
// answered with a fixed message.
func (h *handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)
	if kind == apperr.KindInternal {
		fields := []zap.Field{
			zap.String("request_id", httpmiddleware.RequestIDFrom(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		}
		if p, ok := auth.PrincipalFrom(c); ok {
			fields = append(fields, zap.String("principal_id", p.ID))
		}
		h.log.Error("request failed", fields...)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": apperr.Message(err, internalMessage)})
}

// bind decodes the JSON body into v and answers 400 when it is malformed or
// fails validation.
func (h *handler) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		if fields := validation.Messages(err); fields != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "validation failed", "errors": fields})
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return false
	}
	return true
}

// id reads a uuid path parameter. Malformed ids cannot name a record, so they
// are answered with notFound.
func (h *handler) id(c *gin.Context, name string, notFound error) (string, bool) {
	v := c.Param(name)
	if _, err := uuid.Parse(v); err != nil {
		h.fail(c, notFound)
		return "", false
	}
	return v, true
}

func principal(c *gin.Context) auth.Principal {
	p, _ := auth.PrincipalFrom(c)
	return p
}
