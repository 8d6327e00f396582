package domain

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	default:
		return "unexpected"
	}
}

var (
	ErrNotFound         = errors.New("entity not found")
	ErrDuplicateName    = errors.New("author name already taken")
	ErrInvalidReference = errors.New("referenced author does not exist")
	ErrAlreadyPurchased = errors.New("the user has already bought this book")
	ErrLoginTaken       = errors.New("login already taken")
	ErrInvalidInput     = errors.New("invalid input")

	ErrUnauthenticated = errors.New("authentication required")
	ErrBadCredentials  = errors.New("bad credentials")
	ErrUnknownUser     = errors.New("user behind token not found")
	ErrForbidden       = errors.New("access denied")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrDuplicateName, KindValidation},
	{ErrInvalidReference, KindValidation},
	{ErrAlreadyPurchased, KindValidation},
	{ErrLoginTaken, KindValidation},
	{ErrInvalidInput, KindValidation},
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrBadCredentials, KindUnauthenticated},
	{ErrUnknownUser, KindUnauthenticated},
	{ErrForbidden, KindForbidden},
}

// KindOf returns the most specific kind found in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnexpected
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return KindValidation
	}
	var verr validation.Error
	if errors.As(err, &verr) {
		return KindValidation
	}
	return KindUnexpected
}
