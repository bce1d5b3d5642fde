package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrOwnerAccessRequired     = errors.New("owner access required")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrGuardIDRequired         = errors.New("guard ID is required for guard accounts")
	ErrUnknownRole             = errors.New("unknown role")
)
