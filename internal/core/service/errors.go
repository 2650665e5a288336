package service

import "errors"

var (
	ErrValidation = errors.New("validation failed")

	ErrBookNotFound     = errors.New("book not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("book not found in cart")

	ErrQuantityExceedsAvailability = errors.New("requested quantity exceeds availability")
	ErrRemoveExceedsCartQuantity   = errors.New("requested quantity to remove exceeds cart quantity")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")

	ErrDuplicateRequest = errors.New("duplicate request")
)
