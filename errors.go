package match

import "errors"

var (
	ErrInvalidCapacity = errors.New("ring capacity must be a power of 2")
	ErrInvalidParam    = errors.New("the param is invalid")
	ErrShutdown        = errors.New("engine is shutting down")
	ErrTimeout         = errors.New("timeout")
)
