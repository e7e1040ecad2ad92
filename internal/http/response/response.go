package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/platform/apierr"
)

// ErrorPayload is the error body shape for every endpoint. Clients
// render the list as-is, so messages are user-facing.
type ErrorPayload struct {
	Errors []string `json:"errors"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func RespondErrorStatus(c *gin.Context, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorPayload{Errors: []string{msg}})
}

// RespondError maps a service error onto an HTTP status. Domain rule
// violations come back as typed errors; anything unrecognized is a 500.
func RespondError(c *gin.Context, err error) {
	RespondErrorStatus(c, statusFor(err), err)
}

func statusFor(err error) int {
	var (
		transitionErr *refdomain.TransitionError
		authzErr      *refdomain.AuthorizationError
		refErr        *refdomain.InvalidReferenceError
		dupErr        *refdomain.DuplicateLinkError
		validationErr *refdomain.ValidationError
		apiErr        *apierr.Error
	)
	switch {
	case errors.As(err, &transitionErr),
		errors.As(err, &refErr),
		errors.As(err, &dupErr),
		errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authzErr):
		return http.StatusForbidden
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Status != 0:
		return apiErr.Status
	default:
		return http.StatusInternalServerError
	}
}
