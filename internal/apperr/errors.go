package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNotCommand     = errors.New("not a command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidChatID  = errors.New("invalid chat id")
)
