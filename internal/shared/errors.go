package shared

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates request input failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials covers unknown identity and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDeactivated indicates login or refresh against a deactivated account.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrInvalidToken covers bad signature, malformed payload, and expiry alike.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden indicates an authenticated caller without the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrRoleNotFound indicates a role id with no backing record.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleIntegrity indicates a fixed role tier is missing from storage.
	ErrRoleIntegrity = errors.New("role integrity violation")
)

// RateLimitedError carries the remaining window time alongside the denial.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// IsRateLimited unwraps err into a RateLimitedError when possible.
func IsRateLimited(err error) (*RateLimitedError, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
