package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates a command argument is outside its valid range.
	ErrOutOfRange = errors.New("out of range")
	// ErrFieldMismatch indicates values and widths have different lengths.
	ErrFieldMismatch = errors.New("values and widths mismatch")
	// ErrShortData indicates there are not enough bits to unpack.
	ErrShortData = errors.New("short data")
)

// RangeError reports an invalid command argument.
type RangeError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d not in [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Unwrap makes errors.Is(err, ErrOutOfRange) work.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

func checkRange(field string, val, min, max int64) error {
	if val < min || val > max {
		return &RangeError{Field: field, Value: val, Min: min, Max: max}
	}
	return nil
}
