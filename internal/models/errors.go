package models

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidID  = errors.New("invalid id")
	ErrValidation = errors.New("validation error")
	ErrBadRequest = errors.New("bad request")
	ErrUpstream   = errors.New("media store request failed")
	ErrNoPhoto    = errors.New("user doesn't have any photo")
)
