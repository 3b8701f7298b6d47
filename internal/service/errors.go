package service

import "errors"

var (
	ErrNotAuthenticated   = errors.New("sign in to continue")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not allowed for the current user")

	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrInvalidPrice     = errors.New("booking price could not be computed")
	ErrUnavailable      = errors.New("equipment is not available for the selected dates")

	ErrPaymentOrder              = errors.New("payment order could not be obtained")
	ErrPaymentIncomplete         = errors.New("payment response is missing order id, payment id or signature")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
)
