package weberr

import (
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{msg},
		status,
	))

	return Wrap(e, opts...)
}

// NotAuthorized answers 401 with the error's own text, which callers keep
// free of detail that would tell one bad credential from another.
func NotAuthorized(err error, opts ...Opt) error {
	return NewError(err, err.Error(), http.StatusUnauthorized, opts...)
}

func InternalError(err error, msg string, opts ...Opt) error {
	if msg == "" {
		msg = "the server encountered a problem and could not process your request"
	}
	return NewError(err, msg, http.StatusInternalServerError, opts...)
}

// BadRequest answers 400 with the error's own text as the message.
func BadRequest(err error, opts ...Opt) error {
	return NewError(err, err.Error(), http.StatusBadRequest, opts...)
}

// Mirror answers with a status received from an upstream service. Statuses
// that are not client or server errors become 502.
func Mirror(err error, msg string, status int, opts ...Opt) error {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return NewError(err, msg, status, opts...)
}
