package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partaj-app/partaj-backend/internal/http/response"
	"github.com/partaj-app/partaj-backend/internal/platform/ctxutil"
)

var errUnauthenticated = errors.New("unauthenticated")

// currentUserID reads the authenticated user from the request context.
// Returns false after writing the 401 response.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondErrorStatus(c, http.StatusUnauthorized, errUnauthenticated)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func parseUUIDField(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid " + name)
	}
	return id, nil
}

// pathUUID parses a :param path segment. Returns false after writing
// the 400 response.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
