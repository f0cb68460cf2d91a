package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Denial
// outcomes stay generic: the caller never learns which signature or policy
// check failed.
func RespondError(w http.ResponseWriter, err error) {
	if rl, ok := shared.IsRateLimited(err); ok {
		secs := int(rl.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		Problem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
		return
	}
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, shared.ErrAccountDeactivated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "account is deactivated")
	case errors.Is(err, shared.ErrInvalidToken):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", "resource already exists")
	default:
		// Includes role-integrity faults: never fall back to a permissive state.
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
