package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skybridge/pkg/auth"
	apperrors "skybridge/pkg/errors"
	httputil "skybridge/pkg/http"
	"skybridge/pkg/logger"
)

// RequireRoles admits requests whose forwarded identity carries one of the
// roles and stores that identity in the request context. No roles means any
// authenticated caller.
func RequireRoles(log *logger.Logger, roles ...auth.Role) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			id, ok := auth.FromRequest(r)
			if !ok {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
				return
			}
			if !id.Allowed(roles...) {
				log.Ctx(r.Context()).Warn("Role not allowed",
					"user_id", id.UserID,
					"role", id.Role,
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.Forbidden("You do not have permission to perform this action"))
				return
			}

			next(w, r.WithContext(auth.WithIdentity(r.Context(), id)), ps)
		}
	}
}
