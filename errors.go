package ringlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/behrlich/ringlog/internal/port"
)

// Kind categorizes ringlog errors; re-exported from internal/port so
// callers never need to import that package directly.
type Kind = port.Kind

const (
	KindTooSmallRegion     = port.KindTooSmallRegion
	KindInvalidHeaderBlock = port.KindInvalidHeaderBlock
	KindBlockOutOfRange    = port.KindBlockOutOfRange
	KindDataLenMismatch    = port.KindDataLenMismatch
	KindNotEnoughSpace     = port.KindNotEnoughSpace
	KindCanNotPerformRead  = port.KindCanNotPerformRead
	KindCanNotPerformWrite = port.KindCanNotPerformWrite
	KindNotValidBlock      = port.KindNotValidBlock
	KindConfigWriteFailed  = port.KindConfigWriteFailed
)

// Error represents a structured ringlog error with context.
type Error struct {
	Op         string // Operation that failed (e.g. "Format", "Mount", "Append", "Read")
	Kind       Kind
	BlockIndex int64 // physical block index, -1 if not applicable
	Msg        string
	Inner      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.BlockIndex >= 0 {
		parts = append(parts, fmt.Sprintf("block=%d", e.BlockIndex))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("ringlog: %s (%s)", msg, strings.Join(parts, " "))
	}
	return fmt.Sprintf("ringlog: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support by comparing Kind.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Kind == te.Kind
	}
	return false
}

// NewError creates a new structured error with no block context.
func NewError(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, BlockIndex: -1, Msg: msg}
}

// NewBlockError creates a new structured error scoped to a block index.
func NewBlockError(op string, blockIndex uint64, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, BlockIndex: int64(blockIndex), Msg: msg}
}

// WrapError wraps an existing error with ringlog context, preserving
// Kind if inner is already a *Error.
func WrapError(op string, kind Kind, inner error) *Error {
	if inner == nil {
		return nil
	}
	if re, ok := inner.(*Error); ok {
		return &Error{
			Op:         op,
			Kind:       re.Kind,
			BlockIndex: re.BlockIndex,
			Msg:        re.Msg,
			Inner:      inner,
		}
	}
	return &Error{Op: op, Kind: kind, BlockIndex: -1, Msg: inner.Error(), Inner: inner}
}

// IsKind checks if an error matches a specific Kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
