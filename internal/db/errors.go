package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrInvalidQuery = errors.New("db: invalid query")
	ErrDecode       = errors.New("db: decode failed")
)

// Op constants name store operations for error context.
const (
	OpConnect    = "connect"
	OpPing       = "ping"
	OpFind       = "find"
	OpAggregate  = "aggregate"
	OpDisconnect = "disconnect"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
