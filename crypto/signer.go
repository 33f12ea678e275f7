package crypto

import (
	"fmt"

	"github.com/algorandfoundation/algokit-go/types"
)

// TransactionSigner is the capability the composer invokes during signing.
// Given the whole group in order and the indices it is responsible for, it
// returns one envelope per requested index, in request order. Signers must
// not mutate the supplied transactions, and must be safe for concurrent use
// if the caller signs multiple groups with the same instance.
//
// Implementations should use pointer receivers so that equal signer values
// are deduplicated when the composer batches signing requests.
type TransactionSigner interface {
	SignTransactions(group []types.Transaction, indices []int) ([]types.SignedTxn, error)
}

// AccountSigner signs with a single ed25519 account.
type AccountSigner struct {
	account Account
}

// NewAccountSigner wraps an account as a TransactionSigner.
func NewAccountSigner(account Account) *AccountSigner {
	return &AccountSigner{account: account}
}

// Address returns the signing account's address.
func (s *AccountSigner) Address() types.Address {
	return s.account.Address
}

// SignTransactions implements TransactionSigner.
func (s *AccountSigner) SignTransactions(group []types.Transaction, indices []int) ([]types.SignedTxn, error) {
	out := make([]types.SignedTxn, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(group) {
			return nil, fmt.Errorf("index %d out of bounds for group of %d", idx, len(group))
		}
		stx, err := s.account.SignTransaction(group[idx])
		if err != nil {
			return nil, err
		}
		out = append(out, stx)
	}
	return out, nil
}

// EmptySigner produces unsigned but structurally valid envelopes. Useful as
// input to simulation endpoints that allow empty signatures. It is a
// distinguished signer, not the absence of one.
type EmptySigner struct{}

// NewEmptySigner returns the empty signer.
func NewEmptySigner() *EmptySigner {
	return &EmptySigner{}
}

// SignTransactions implements TransactionSigner.
func (s *EmptySigner) SignTransactions(group []types.Transaction, indices []int) ([]types.SignedTxn, error) {
	out := make([]types.SignedTxn, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(group) {
			return nil, fmt.Errorf("index %d out of bounds for group of %d", idx, len(group))
		}
		out = append(out, types.SignedTxn{Txn: group[idx]})
	}
	return out, nil
}

// LogicSigSigner authorizes transactions with a logic signature program.
type LogicSigSigner struct {
	lsig types.LogicSig
}

// NewLogicSigSigner wraps a logic signature as a TransactionSigner.
func NewLogicSigSigner(lsig types.LogicSig) *LogicSigSigner {
	return &LogicSigSigner{lsig: lsig}
}

// Address returns the program's escrow address.
func (s *LogicSigSigner) Address() types.Address {
	return s.lsig.Address()
}

// SignTransactions implements TransactionSigner.
func (s *LogicSigSigner) SignTransactions(group []types.Transaction, indices []int) ([]types.SignedTxn, error) {
	out := make([]types.SignedTxn, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(group) {
			return nil, fmt.Errorf("index %d out of bounds for group of %d", idx, len(group))
		}
		stx := types.SignedTxn{Txn: group[idx], Lsig: s.lsig}
		if addr := s.lsig.Address(); addr != group[idx].Sender {
			stx.AuthAddr = addr
		}
		out = append(out, stx)
	}
	return out, nil
}

// MultisigSigner signs for a multisig account with the participant keys it
// holds. The resulting envelopes are partial when fewer participants than
// the threshold are available locally.
type MultisigSigner struct {
	version   uint8
	threshold uint8
	pks       []types.Address
	accounts  []Account
	address   types.Address
}

// NewMultisigSigner builds a signer for the multisig account described by
// version/threshold/pks, signing with the subset of participant accounts
// provided.
func NewMultisigSigner(version, threshold uint8, pks []types.Address, accounts []Account) (*MultisigSigner, error) {
	addr, err := types.MultisigAddress(version, threshold, pks)
	if err != nil {
		return nil, err
	}
	for _, acct := range accounts {
		if !containsAddress(pks, acct.Address) {
			return nil, fmt.Errorf("account %s is not a participant of the multisig", acct.Address)
		}
	}
	return &MultisigSigner{
		version:   version,
		threshold: threshold,
		pks:       pks,
		accounts:  accounts,
		address:   addr,
	}, nil
}

// Address returns the multisig account address.
func (s *MultisigSigner) Address() types.Address {
	return s.address
}

// SignTransactions implements TransactionSigner.
func (s *MultisigSigner) SignTransactions(group []types.Transaction, indices []int) ([]types.SignedTxn, error) {
	out := make([]types.SignedTxn, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(group) {
			return nil, fmt.Errorf("index %d out of bounds for group of %d", idx, len(group))
		}

		msig := types.MultisigSig{
			Version:   s.version,
			Threshold: s.threshold,
			Subsigs:   make([]types.MultisigSubsig, len(s.pks)),
		}
		for i, pk := range s.pks {
			msig.Subsigs[i].Key = pk
		}

		toSign := group[idx].BytesToSign()
		for _, acct := range s.accounts {
			sig, err := acct.SignBytes(toSign)
			if err != nil {
				return nil, err
			}
			for i, pk := range s.pks {
				if pk == acct.Address {
					msig.Subsigs[i].Sig = sig
				}
			}
		}

		stx := types.SignedTxn{Txn: group[idx], Msig: msig}
		if s.address != group[idx].Sender {
			stx.AuthAddr = s.address
		}
		out = append(out, stx)
	}
	return out, nil
}

func containsAddress(addrs []types.Address, target types.Address) bool {
	for _, a := range addrs {
		if a == target {
			return true
		}
	}
	return false
}
