package loan

import "errors"

var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrLoanTypeNotFound        = errors.New("loan type not found")
	ErrLoanTypeNameExists      = errors.New("loan type name already exists")
	ErrLoanTypeInactive        = errors.New("loan type is not active")
	ErrPrincipalExceedsLimit   = errors.New("principal exceeds the loan type amount limit")
	ErrTermExceedsMaximum      = errors.New("term exceeds the loan type maximum term")
	ErrInvalidStatusTransition = errors.New("loan status transition not allowed")
)
