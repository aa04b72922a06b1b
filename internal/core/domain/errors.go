package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind tags every failure the core reports to its callers.
type ErrorKind string

const (
	KindEmailAlreadyTaken  ErrorKind = "EmailAlreadyTaken"
	KindEmailNotRegistered ErrorKind = "EmailNotRegistered"
	KindWrongPassword      ErrorKind = "WrongPassword"
	KindRecordNotFound     ErrorKind = "RecordNotFound"
	KindCarAlreadyRented   ErrorKind = "CarAlreadyRented"
	KindInvalidToken       ErrorKind = "InvalidToken"
	KindInvalidArgument    ErrorKind = "InvalidArgument"
	KindInvalidInterval    ErrorKind = "InvalidInterval"
	KindInsufficientAccess ErrorKind = "InsufficientAccess"
)

// Error is a classified domain failure. Two Errors match under errors.Is
// when their kinds are equal, so the sentinels below can be used as targets
// regardless of the details a constructor attached.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrEmailAlreadyTaken  = &Error{Kind: KindEmailAlreadyTaken, Message: "Email is already taken!"}
	ErrEmailNotRegistered = &Error{Kind: KindEmailNotRegistered, Message: "Email is not registered!"}
	ErrWrongPassword      = &Error{Kind: KindWrongPassword, Message: "Password is not correct!"}
	ErrRecordNotFound     = &Error{Kind: KindRecordNotFound, Message: "Record not found!"}
	ErrCarAlreadyRented   = &Error{Kind: KindCarAlreadyRented, Message: "Car is already rented!"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "Invalid token"}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument, Message: "Invalid argument"}
	ErrInvalidInterval    = &Error{Kind: KindInvalidInterval, Message: "Rental end must be after its start"}
	ErrInsufficientAccess = &Error{Kind: KindInsufficientAccess, Message: "Access forbidden!"}
)

// EmailAlreadyTaken reports a registration against an existing email.
func EmailAlreadyTaken(email string) *Error {
	return &Error{
		Kind:    KindEmailAlreadyTaken,
		Message: fmt.Sprintf("%s is already taken!", email),
		Details: map[string]any{"email": email},
	}
}

// EmailNotRegistered reports a login for an unknown email.
func EmailNotRegistered(email string) *Error {
	return &Error{
		Kind:    KindEmailNotRegistered,
		Message: fmt.Sprintf("%s is not registered!", email),
		Details: map[string]any{"email": email},
	}
}

// RecordNotFound reports a missing entity of the named type.
func RecordNotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindRecordNotFound,
		Message: ErrRecordNotFound.Message,
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// CarAlreadyRented carries the contested car for error reporting.
func CarAlreadyRented(car *Car) *Error {
	e := &Error{Kind: KindCarAlreadyRented, Message: ErrCarAlreadyRented.Message}
	if car != nil {
		e.Message = fmt.Sprintf("%s is already rented!!", car.Name)
		e.Details = map[string]any{"car": car}
	}
	return e
}

// InvalidToken reports a missing or unverifiable token. detail says which.
func InvalidToken(detail string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidToken,
		Message: ErrInvalidToken.Message,
		Details: map[string]any{"reason": detail},
		Err:     cause,
	}
}

// InvalidArgument reports a missing or malformed input to a core primitive.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// InvalidInterval reports a rental period whose end is not after its start.
func InvalidInterval(start, end time.Time) *Error {
	return &Error{
		Kind:    KindInvalidInterval,
		Message: ErrInvalidInterval.Message,
		Details: map[string]any{"rentStartedAt": start, "rentEndedAt": end},
	}
}

// InsufficientAccess reports a role that may not perform the operation.
func InsufficientAccess(role Role) *Error {
	return &Error{
		Kind:    KindInsufficientAccess,
		Message: ErrInsufficientAccess.Message,
		Details: map[string]any{"role": role},
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
