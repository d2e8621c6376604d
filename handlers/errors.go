package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// statusFor maps a domain error kind to its HTTP status. Zero means the
// error is internal.
func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.ErrValidation, services.ErrUnavailable,
		services.ErrInsufficientStock, services.ErrInvalidTransition:
		return http.StatusBadRequest
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrConflict:
		return http.StatusConflict
	case services.ErrUnauthorized:
		return http.StatusUnauthorized
	case services.ErrForbidden:
		return http.StatusForbidden
	}
	return 0
}

// respondError writes err. Internal errors are attached to the context
// for the request logger and never shown to the caller.
func respondError(c *gin.Context, err error) {
	if code := statusFor(err); code != 0 {
		resp.Error(c, code, err.Error())
		return
	}
	_ = c.Error(err)
	resp.ServerError(c)
}

// bindError reports a request body that failed to decode or validate
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = describeField(fe)
		}
		resp.BadRequest(c, strings.Join(msgs, "; "))
		return
	}
	resp.BadRequest(c, "Invalid request body")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// paramID parses a uuid path parameter; a malformed id cannot match any
// row so it is reported as not found.
func paramID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		resp.NotFound(c, what+" not found")
		return uuid.Nil, false
	}
	return id, true
}
