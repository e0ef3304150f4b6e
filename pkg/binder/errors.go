package binder

import "errors"

var (
	// ErrBinderNotApplicable signals that a binder does not handle the request's content type.
	ErrBinderNotApplicable  = errors.New("binder not applicable")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid JSON request body")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrInvalidQuery         = errors.New("invalid query parameters")
	ErrBodyTooLarge         = errors.New("request body too large")
)
