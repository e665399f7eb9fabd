package contract

import "errors"

var (
	ErrModelInvoke    = errors.New("model invoke failed")
	ErrUnknownRole    = errors.New("unknown agent role")
	ErrValidation     = errors.New("validation failed")
	ErrSessionDone    = errors.New("session is finished")
	ErrSessionRunning = errors.New("session already started")
)
