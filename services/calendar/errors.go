package calendar

import (
	"errors"
	"fmt"

	"leadline/services/googleauth"
)

var (
	// ErrAuthRequired is surfaced when the calendar credential cannot be refreshed.
	ErrAuthRequired = googleauth.ErrAuthRequired
	// ErrCalendarUnavailable wraps backend failures during availability checks.
	ErrCalendarUnavailable = errors.New("calendar: backend unavailable")
	// ErrBookingFailed matches every *BookingError.
	ErrBookingFailed = errors.New("calendar: booking failed")
)

// Booking failure codes.
const (
	CodeInvalidRequest = "invalid_request"
	CodeAuthRequired   = "auth_required"
	CodeTimeout        = "timeout"
	CodeBackend        = "backend_error"
)

// BookingError is the structured failure returned by Gateway.Book.
type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func (e *BookingError) Is(target error) bool {
	return target == ErrBookingFailed
}

func NewBookingError(code, msg string, err error) error {
	return &BookingError{Code: code, Message: msg, Err: err}
}
