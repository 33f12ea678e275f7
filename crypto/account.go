// Package crypto holds key material and the signer capability used by the
// transaction composer. Signers produce signature envelopes over canonical
// transaction bytes and never mutate the transactions they are given.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/algorandfoundation/algokit-go/types"
)

// Account is an ed25519 keypair together with its derived address.
type Account struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	Address    types.Address
}

// GenerateAccount creates a new random account.
func GenerateAccount() (Account, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Account{}, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return accountFromKeys(pub, priv)
}

// AccountFromPrivateKey rebuilds an account from an ed25519 private key.
func AccountFromPrivateKey(priv ed25519.PrivateKey) (Account, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return Account{}, fmt.Errorf("expected %d byte private key, got %d", ed25519.PrivateKeySize, len(priv))
	}
	return accountFromKeys(priv.Public().(ed25519.PublicKey), priv)
}

// AccountFromSeed rebuilds an account from a 32-byte ed25519 seed.
func AccountFromSeed(seed []byte) (Account, error) {
	if len(seed) != ed25519.SeedSize {
		return Account{}, fmt.Errorf("expected %d byte seed, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return accountFromKeys(priv.Public().(ed25519.PublicKey), priv)
}

func accountFromKeys(pub ed25519.PublicKey, priv ed25519.PrivateKey) (Account, error) {
	addr, err := types.AddressFromPublicKey(pub)
	if err != nil {
		return Account{}, err
	}
	return Account{PublicKey: pub, PrivateKey: priv, Address: addr}, nil
}

// SignTransaction produces a signed envelope for tx. When the account is not
// the sender, as with a rekeyed sender, the envelope carries the signing
// address in AuthAddr.
func (a Account) SignTransaction(tx types.Transaction) (types.SignedTxn, error) {
	if len(a.PrivateKey) != ed25519.PrivateKeySize {
		return types.SignedTxn{}, fmt.Errorf("account %s has no private key", a.Address)
	}

	stx := types.SignedTxn{Txn: tx}
	copy(stx.Sig[:], ed25519.Sign(a.PrivateKey, tx.BytesToSign()))
	if a.Address != tx.Sender {
		stx.AuthAddr = a.Address
	}
	return stx, nil
}

// SignBytes signs arbitrary prefixed bytes. Exposed for signature schemes
// layered on top of the account, such as multisig participation.
func (a Account) SignBytes(b []byte) (types.Signature, error) {
	if len(a.PrivateKey) != ed25519.PrivateKeySize {
		return types.Signature{}, fmt.Errorf("account %s has no private key", a.Address)
	}
	var sig types.Signature
	copy(sig[:], ed25519.Sign(a.PrivateKey, b))
	return sig, nil
}
