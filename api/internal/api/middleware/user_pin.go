package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PINHeader carries the client's 4-digit PIN on history requests.
const PINHeader = "X-User-PIN"

type PINVerifier interface {
	VerifyPIN(ctx context.Context, userID, pin string) bool
}

// RequireUserPIN guards /users/{id}/... routes. Unknown ids and wrong PINs
// are indistinguishable to the caller.
func RequireUserPIN(verifier PINVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pin := r.Header.Get(PINHeader)
			if pin == "" || !verifier.VerifyPIN(r.Context(), chi.URLParam(r, "id"), pin) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
