package errs

import (
	"strconv"

	"github.com/pkg/errors"
)

// Error codes used across the realtime core. The ranges follow the usual
// split: 1xxx connection lifecycle, 2xxx storage, 3xxx routing.
const (
	CodeIdentityMissing = 1001
	CodeConnClosed      = 1002
	CodeRecordNotFound  = 2001
	CodeDuplicateRecord = 2002
	CodeRouteAbsent     = 3001
)

var (
	ErrIdentityMissing = NewCodeError(CodeIdentityMissing, "connection did not supply a user id")
	ErrConnClosed      = NewCodeError(CodeConnClosed, "connection handle is closed")
	ErrRecordNotFound  = NewCodeError(CodeRecordNotFound, "record not found")
)

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	s := strconv.Itoa(e.Code) + " " + e.Msg
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

// WithDetail returns a copy carrying extra context; the code keeps matching
// the original via Is.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

// New wraps a plain message into an error with a call stack.
func New(msg string) error {
	return errors.New(msg)
}

// WrapMsg annotates err with msg, keeping the original cause chain.
func WrapMsg(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
