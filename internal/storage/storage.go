package storage

import "errors"

var (
	ErrImageNotFound = errors.New("image does not exist")
	ErrInvalidID     = errors.New("invalid image id")
)
