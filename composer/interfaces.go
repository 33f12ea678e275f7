package composer

import (
	"context"

	"github.com/algorandfoundation/algokit-go/crypto"
	"github.com/algorandfoundation/algokit-go/models"
	"github.com/algorandfoundation/algokit-go/types"
)

// ParamsSource supplies suggested transaction parameters. The composer
// consults it at most once per build.
type ParamsSource interface {
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
}

// Submitter broadcasts an encoded signed transaction group and returns the
// txid of the first transaction.
type Submitter interface {
	SubmitRaw(ctx context.Context, stxns []byte) (string, error)
}

// Simulator evaluates a transaction group without committing it.
type Simulator interface {
	SimulateRaw(ctx context.Context, request models.SimulateRequest) (models.SimulateResponse, error)
}

// SignerGetter resolves the signer responsible for a sender address. It is
// consulted only for intents without an explicit signer override.
type SignerGetter interface {
	SignerFor(address types.Address) (crypto.TransactionSigner, bool)
}

// SignerGetterFunc adapts a function to the SignerGetter interface.
type SignerGetterFunc func(address types.Address) (crypto.TransactionSigner, bool)

// SignerFor implements SignerGetter.
func (f SignerGetterFunc) SignerFor(address types.Address) (crypto.TransactionSigner, bool) {
	return f(address)
}

// SignerMap is a fixed address-to-signer table implementing SignerGetter.
type SignerMap map[types.Address]crypto.TransactionSigner

// SignerFor implements SignerGetter.
func (m SignerMap) SignerFor(address types.Address) (crypto.TransactionSigner, bool) {
	signer, ok := m[address]
	return signer, ok
}
