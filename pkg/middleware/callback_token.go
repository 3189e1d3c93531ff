package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "skybridge/pkg/errors"
	httputil "skybridge/pkg/http"
	"skybridge/pkg/logger"
)

const HeaderCallbackToken = "X-Callback-Token"

// CallbackToken guards a webhook route with the shared verification token
// the payment provider sends on every callback.
func CallbackToken(token string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			received := r.Header.Get(HeaderCallbackToken)

			if token == "" || received == "" || subtle.ConstantTimeCompare([]byte(received), []byte(token)) != 1 {
				log.Ctx(r.Context()).Warn("Webhook verification failed",
					"token_present", received != "",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid callback token"))
				return
			}

			next(w, r, ps)
		}
	}
}
