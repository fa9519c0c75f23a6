package core

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a machine-readable failure category surfaced to callers.
type Kind string

const (
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindWarehouseNotFound Kind = "WAREHOUSE_NOT_FOUND"
	KindItemNotFound      Kind = "ITEM_NOT_FOUND"
	KindItemTooBigForCell Kind = "ITEM_TOO_BIG_FOR_CELL"
	KindItemDimsMissing   Kind = "ITEM_DIMS_MISSING"
	KindNoFreeLocation    Kind = "NO_FREE_LOCATION"
	KindNoSpaceToCompact  Kind = "NO_SPACE_TO_COMPACT"
	KindInconsistentStock Kind = "INCONSISTENT_STOCK"
	KindLayoutRequired    Kind = "LAYOUT_REQUIRED"
)

// Error is a slotting failure with a Kind and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an *Error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error around cause.
func WrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Shortfall is the quantity of an item a compaction plan could not place.
type Shortfall struct {
	ItemID   int `json:"item_id"`
	Priority int `json:"priority"`
	Missing  int `json:"missing"`
}

// ShortfallError lists every item a priority compaction could not fit.
// It is carried as the Cause of a KindNoSpaceToCompact error.
type ShortfallError struct {
	Shortfalls []Shortfall
}

func (e *ShortfallError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("item %d short by %d", s.ItemID, s.Missing))
	}
	return strings.Join(parts, ", ")
}

// ShortfallsOf extracts the shortfall list from err, if present.
func ShortfallsOf(err error) []Shortfall {
	var se *ShortfallError
	if errors.As(err, &se) {
		return se.Shortfalls
	}
	return nil
}
