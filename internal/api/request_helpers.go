package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/api/shared"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/auth"
)

// requireUserID extracts the authenticated user placed in the context by the
// auth middleware. It writes a 401 and returns false when there is none.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}
