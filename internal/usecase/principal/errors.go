// Package principal implements registration, authentication and role changes
// of portal principals. Every principal write goes through the Enforcer.
package principal

import (
	"errors"
	"fmt"

	"newsportal/internal/domain/entity"
)

var (
	// ErrPrincipalNotFound indicates that the referenced principal does not exist.
	ErrPrincipalNotFound = fmt.Errorf("principal %w", entity.ErrNotFound)

	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
