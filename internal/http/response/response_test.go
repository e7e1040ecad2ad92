package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/platform/apierr"
)

func respond(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondError(c, err)
	return rec
}

func TestRespondErrorStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"transition", refdomain.NewTransitionError(refdomain.OpSend, refdomain.StateClosed), http.StatusBadRequest},
		{"invalid reference", refdomain.NewInvalidReferenceError("unit", "abc"), http.StatusBadRequest},
		{"duplicate link", refdomain.NewDuplicateLinkError("already linked"), http.StatusBadRequest},
		{"validation", refdomain.NewValidationError("object is required"), http.StatusBadRequest},
		{"authorization", refdomain.NewAuthorizationError("not a requester"), http.StatusForbidden},
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"api error status", apierr.New(http.StatusConflict, "conflict", errors.New("boom")), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := respond(t, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRespondErrorWrappedError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("load referral: %w", refdomain.NewAuthorizationError("not a member"))
	rec := respond(t, wrapped)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRespondErrorPayloadShape(t *testing.T) {
	t.Parallel()

	rec := respond(t, refdomain.NewValidationError("question is required"))

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "question is required", payload.Errors[0])
}
