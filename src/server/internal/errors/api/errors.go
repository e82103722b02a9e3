package api

import "github.com/cockroachdb/errors"

type ErrorCode string

var DefaultErrorCode = ErrorCode("unknown_error")

func WrapError(err *Error, msg string) *Error {
	return &Error{
		ErrorCode:     err.ErrorCode,
		UserMessage:   err.UserMessage,
		InternalError: errors.Wrap(err.InternalError, msg),
	}
}

func CommitError(err error, errorCode ErrorCode, userMessage string) *Error {
	return &Error{
		ErrorCode:     errorCode,
		UserMessage:   userMessage,
		InternalError: err,
	}
}

// a concrete error type instead of package methods guessing at an
// opaque error's insides - every usecase returns this and every gateway
// needs all three fields to render a response
type Error struct {
	ErrorCode     ErrorCode
	UserMessage   string
	InternalError error
}

func (e Error) Cause() error {
	return e.InternalError
}

func (e Error) Error() string {
	return e.InternalError.Error()
}
