package rawg

import (
	"errors"
	"fmt"
)

// Sentinel errors for RAWG API operations.
var (
	ErrNotFound     = errors.New("rawg: not found")
	ErrRateLimited  = errors.New("rawg: rate limited by server")
	ErrBadRequest   = errors.New("rawg: bad request")
	ErrUnauthorized = errors.New("rawg: api key rejected")
	ErrServer       = errors.New("rawg: server error")
	ErrTimeout      = errors.New("rawg: fetch timed out")
	ErrMalformed    = errors.New("rawg: malformed response")
	ErrInvalidID    = errors.New("rawg: invalid id")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // listItems, searchItems, listGenres, listPlatforms, getItemDetail, screenshots
	ID  int    // if applicable
	Err error
}

func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("rawg %s [%d]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("rawg %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, id int, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}
