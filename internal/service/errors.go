package service

import "errors"

var (
	ErrNoSession        = errors.New("error no active session")
	ErrPasswordMismatch = errors.New("error passwords do not match")
	ErrEmptyField       = errors.New("error required field is empty")
	ErrNoUserID         = errors.New("error can't resolve user id")
)
