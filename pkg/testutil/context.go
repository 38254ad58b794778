package testutil

import (
	"net/http"

	id "familytree/pkg/domain"
	"familytree/pkg/requestcontext"
)

// WithUserID marks req as authenticated for userID, as RequireAuth would.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}
