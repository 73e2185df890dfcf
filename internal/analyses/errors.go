package analyses

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateID  = errors.New("duplicate analysis id")
	ErrInvalidReply = errors.New("model reply is not a JSON object")
)
