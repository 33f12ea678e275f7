package types

import (
	"crypto/sha512"
	"fmt"

	"github.com/algorandfoundation/algokit-go/encoding/msgpack"
)

// MultisigSubsig is one participant slot in a multisig signature.
type MultisigSubsig struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Key [AddressByteLength]byte `codec:"pk"`
	Sig Signature               `codec:"s"`
}

// MultisigSig holds a (possibly partial) multisignature.
type MultisigSig struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Version   uint8            `codec:"v"`
	Threshold uint8            `codec:"thr"`
	Subsigs   []MultisigSubsig `codec:"subsig"`
}

// Blank returns true when no multisig data is present.
func (msig MultisigSig) Blank() bool {
	return msig.Version == 0 && msig.Threshold == 0 && len(msig.Subsigs) == 0
}

// msigAddrPrefix domain-separates multisig address hashes.
var msigAddrPrefix = []byte("MultisigAddr")

// MultisigAddress derives the account address controlled by the given
// multisig preimage.
func MultisigAddress(version, threshold uint8, pks []Address) (Address, error) {
	if version != 1 {
		return Address{}, fmt.Errorf("unsupported multisig version %d", version)
	}
	if threshold == 0 || len(pks) == 0 || int(threshold) > len(pks) {
		return Address{}, fmt.Errorf("invalid multisig threshold %d of %d", threshold, len(pks))
	}

	buf := make([]byte, 0, len(msigAddrPrefix)+2+len(pks)*AddressByteLength)
	buf = append(buf, msigAddrPrefix...)
	buf = append(buf, version, threshold)
	for _, pk := range pks {
		buf = append(buf, pk[:]...)
	}
	return Address(sha512.Sum512_256(buf)), nil
}

// LogicSig is a logic signature: a program whose approval authorizes the
// transaction, optionally delegated via Sig or Msig.
type LogicSig struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Logic []byte      `codec:"l"`
	Sig   Signature   `codec:"sig"`
	Msig  MultisigSig `codec:"msig"`
	Args  [][]byte    `codec:"arg"`
}

// Blank returns true when no logic signature is present.
func (lsig LogicSig) Blank() bool {
	return len(lsig.Logic) == 0
}

// programPrefix domain-separates logic-sig program hashes.
var programPrefix = []byte("Program")

// Address derives the escrow address of the program.
func (lsig LogicSig) Address() Address {
	buf := make([]byte, 0, len(programPrefix)+len(lsig.Logic))
	buf = append(buf, programPrefix...)
	buf = append(buf, lsig.Logic...)
	return Address(sha512.Sum512_256(buf))
}

// SignedTxn wraps a transaction with its authorization. At most one of
// Sig/Msig/Lsig is present; all-blank is the structurally valid unsigned
// envelope accepted by simulation endpoints.
type SignedTxn struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Sig      Signature   `codec:"sig"`
	Msig     MultisigSig `codec:"msig"`
	Lsig     LogicSig    `codec:"lsig"`
	Txn      Transaction `codec:"txn"`
	AuthAddr Address     `codec:"sgnr"`
}

// Encode returns the canonical encoding of the signed transaction. This is
// the submission wire format; group members are concatenated.
func (stx SignedTxn) Encode() []byte {
	return msgpack.Encode(stx)
}

// ID returns the id of the wrapped transaction.
func (stx SignedTxn) ID() string {
	return stx.Txn.ID()
}

// Validate checks that at most one authorization arm is populated.
func (stx SignedTxn) Validate() error {
	populated := 0
	if !stx.Sig.Blank() {
		populated++
	}
	if !stx.Msig.Blank() {
		populated++
	}
	if !stx.Lsig.Blank() {
		populated++
	}
	if populated > 1 {
		return fmt.Errorf("signed transaction has %d authorizations, expected at most one", populated)
	}
	return nil
}

// DecodeSignedTxn decodes a canonical signed transaction encoding.
func DecodeSignedTxn(b []byte) (SignedTxn, error) {
	var stx SignedTxn
	if err := msgpack.Decode(b, &stx); err != nil {
		return SignedTxn{}, fmt.Errorf("failed to decode signed transaction: %w", err)
	}
	return stx, nil
}

// EncodeSignedGroup concatenates the canonical encodings of a signed group
// in group order.
func EncodeSignedGroup(stxns []SignedTxn) []byte {
	var out []byte
	for _, stx := range stxns {
		out = append(out, stx.Encode()...)
	}
	return out
}
