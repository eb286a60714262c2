package user

import "errors"

var (
	ErrMissingIdentity          = errors.New("user_id claim is missing or invalid")
	ErrEmployeeIdentityRequired = errors.New("no employee is linked to this account")
	ErrInsufficientPermissions  = errors.New("insufficient permissions")
	ErrInvalidToken             = errors.New("invalid token")
)
