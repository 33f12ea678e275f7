// Package types defines the Algorand transaction data model: addresses,
// amounts, the common transaction header, the per-kind field records, signed
// transaction envelopes, and the canonical hashing rules for transaction ids
// and atomic groups.
package types

// TxType identifies the kind of a transaction.
type TxType string

const (
	// PaymentTx moves MicroAlgos between accounts.
	PaymentTx TxType = "pay"

	// KeyRegistrationTx registers (or retires) participation keys.
	KeyRegistrationTx TxType = "keyreg"

	// AssetConfigTx creates, reconfigures or destroys an asset.
	AssetConfigTx TxType = "acfg"

	// AssetTransferTx moves asset units between accounts.
	AssetTransferTx TxType = "axfer"

	// AssetFreezeTx freezes or unfreezes an account's asset holding.
	AssetFreezeTx TxType = "afrz"

	// ApplicationCallTx calls (or creates, updates, deletes) an application.
	ApplicationCallTx TxType = "appl"
)

// MicroAlgos is an amount denominated in the protocol's base unit.
type MicroAlgos uint64

// Round is a block height.
type Round uint64

// AssetIndex uniquely identifies an asset.
type AssetIndex uint64

// AppIndex uniquely identifies an application.
type AppIndex uint64

// Digest is a SHA-512/256 hash.
type Digest [DigestByteLength]byte

// Signature is an ed25519 signature.
type Signature [SignatureByteLength]byte

const (
	// DigestByteLength is the length of a SHA-512/256 digest.
	DigestByteLength = 32

	// SignatureByteLength is the length of an ed25519 signature.
	SignatureByteLength = 64

	// LeaseByteLength is the length of a transaction lease.
	LeaseByteLength = 32

	// MaxNoteBytes is the maximum size of a transaction note.
	MaxNoteBytes = 1024

	// MaxTxGroupSize is the maximum number of transactions in an atomic group.
	MaxTxGroupSize = 16

	// MaxValidityWindow is the widest allowed first-valid..last-valid range.
	MaxValidityWindow = 1000

	// SignatureEncodingIncr estimates the encoded size a signature envelope
	// adds to a transaction. Used when computing per-byte fees before the
	// transaction is actually signed.
	SignatureEncodingIncr = 75
)

// IsZero returns true for the all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Blank returns true for the all-zero signature.
func (s Signature) Blank() bool {
	return s == Signature{}
}
