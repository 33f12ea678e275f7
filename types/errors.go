package types

import "fmt"

// InvalidFieldError reports a structurally invalid transaction field. It is
// returned at construction time, before any encoding is attempted.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// GroupSizeError reports an atomic group outside the protocol's 1..16 limit.
type GroupSizeError struct {
	Size int
}

func (e GroupSizeError) Error() string {
	return fmt.Sprintf("transaction group size %d is outside the allowed range [1, %d]", e.Size, MaxTxGroupSize)
}
