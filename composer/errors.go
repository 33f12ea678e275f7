package composer

import (
	"errors"
	"fmt"

	"github.com/algorandfoundation/algokit-go/types"
)

// ErrSealed is returned when an intent is added after the group was built.
var ErrSealed = errors.New("composer is sealed, the transaction group is already built")

// ErrNotBuilt is returned when an operation requires a built group.
var ErrNotBuilt = errors.New("transaction group has not been built")

// ErrNotSigned is returned when an operation requires a signed group.
var ErrNotSigned = errors.New("transaction group has not been signed")

// ValidityWindowError reports a first/last valid range wider than the
// protocol allows.
type ValidityWindowError struct {
	FirstValid types.Round
	LastValid  types.Round
}

func (e ValidityWindowError) Error() string {
	return fmt.Sprintf("validity window [%d, %d] spans %d rounds, the maximum is %d",
		e.FirstValid, e.LastValid, e.LastValid-e.FirstValid, types.MaxValidityWindow)
}

// NoSignerError reports that signer resolution found nothing for a sender.
type NoSignerError struct {
	Address types.Address
}

func (e NoSignerError) Error() string {
	return fmt.Sprintf("no signer found for address %s", e.Address)
}

// SignerFailedError wraps a signer failure with the group index of the first
// transaction the signer was responsible for.
type SignerFailedError struct {
	Index int
	Err   error
}

func (e SignerFailedError) Error() string {
	return fmt.Sprintf("signer for transaction %d failed: %v", e.Index, e.Err)
}

func (e SignerFailedError) Unwrap() error {
	return e.Err
}
