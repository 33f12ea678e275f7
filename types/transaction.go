package types

import (
	"crypto/sha512"
	"fmt"

	"github.com/algorandfoundation/algokit-go/encoding/msgpack"
)

// Header holds the fields common to every transaction kind.
type Header struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Sender      Address    `codec:"snd"`
	Fee         MicroAlgos `codec:"fee"`
	FirstValid  Round      `codec:"fv"`
	LastValid   Round      `codec:"lv"`
	Note        []byte     `codec:"note"`
	GenesisID   string     `codec:"gen"`
	GenesisHash Digest     `codec:"gh"`

	// Group binds this transaction into an atomic group. It is assigned by
	// AssignGroupID and must be zero before grouping.
	Group Digest `codec:"grp"`

	Lease   [LeaseByteLength]byte `codec:"lx"`
	RekeyTo Address               `codec:"rekey"`
}

// PaymentTxnFields captures the fields of a payment transaction.
type PaymentTxnFields struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Receiver Address    `codec:"rcv"`
	Amount   MicroAlgos `codec:"amt"`

	// CloseRemainderTo, when set, closes the sender account and sends its
	// remaining balance to this address.
	CloseRemainderTo Address `codec:"close"`
}

// KeyregTxnFields captures the fields of a key registration transaction.
type KeyregTxnFields struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	VotePK           [32]byte `codec:"votekey"`
	SelectionPK      [32]byte `codec:"selkey"`
	StateProofPK     [64]byte `codec:"sprfkey"`
	VoteFirst        Round    `codec:"votefst"`
	VoteLast         Round    `codec:"votelst"`
	VoteKeyDilution  uint64   `codec:"votekd"`
	Nonparticipation bool     `codec:"nonpart"`
}

// AssetParams describes the mutable and immutable parameters of an asset.
type AssetParams struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Total         uint64   `codec:"t"`
	Decimals      uint32   `codec:"dc"`
	DefaultFrozen bool     `codec:"df"`
	UnitName      string   `codec:"un"`
	AssetName     string   `codec:"an"`
	URL           string   `codec:"au"`
	MetadataHash  [32]byte `codec:"am"`
	Manager       Address  `codec:"m"`
	Reserve       Address  `codec:"r"`
	Freeze        Address  `codec:"f"`
	Clawback      Address  `codec:"c"`
}

// AssetConfigTxnFields captures the fields of an asset config transaction.
// ConfigAsset zero means creation; a zero AssetParams on an existing asset
// destroys it.
type AssetConfigTxnFields struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	ConfigAsset AssetIndex  `codec:"caid"`
	AssetParams AssetParams `codec:"apar"`
}

// AssetTransferTxnFields captures the fields of an asset transfer
// transaction. An AssetSender distinct from the header sender indicates a
// clawback by the asset's clawback account.
type AssetTransferTxnFields struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	XferAsset     AssetIndex `codec:"xaid"`
	AssetAmount   uint64     `codec:"aamt"`
	AssetSender   Address    `codec:"asnd"`
	AssetReceiver Address    `codec:"arcv"`
	AssetCloseTo  Address    `codec:"aclose"`
}

// AssetFreezeTxnFields captures the fields of an asset freeze transaction.
type AssetFreezeTxnFields struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	FreezeAccount Address    `codec:"fadd"`
	FreezeAsset   AssetIndex `codec:"faid"`
	AssetFrozen   bool       `codec:"afrz"`
}

// OnCompletion is the application call mode.
type OnCompletion uint64

const (
	// NoOpOC runs the approval program with no further side effect.
	NoOpOC OnCompletion = 0

	// OptInOC allocates local state for the sender.
	OptInOC OnCompletion = 1

	// CloseOutOC deallocates local state, running the approval program.
	CloseOutOC OnCompletion = 2

	// ClearStateOC deallocates local state via the clear-state program.
	ClearStateOC OnCompletion = 3

	// UpdateApplicationOC replaces the application's programs.
	UpdateApplicationOC OnCompletion = 4

	// DeleteApplicationOC deletes the application.
	DeleteApplicationOC OnCompletion = 5
)

// StateSchema counts the state entries an application may allocate.
type StateSchema struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	NumUint      uint64 `codec:"nui"`
	NumByteSlice uint64 `codec:"nbs"`
}

// BoxRef names a box accessed by an application call. Index is a position in
// the foreign-apps array (0 refers to the called application).
type BoxRef struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Index uint64 `codec:"i"`
	Name  []byte `codec:"n"`
}

// ApplicationCallTxnFields captures the fields of an application call
// transaction. ApplicationID zero means creation.
type ApplicationCallTxnFields struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	ApplicationID     AppIndex     `codec:"apid"`
	OnCompletion      OnCompletion `codec:"apan"`
	ApplicationArgs   [][]byte     `codec:"apaa"`
	Accounts          []Address    `codec:"apat"`
	ForeignApps       []AppIndex   `codec:"apfa"`
	ForeignAssets     []AssetIndex `codec:"apas"`
	Boxes             []BoxRef     `codec:"apbx"`
	LocalStateSchema  StateSchema  `codec:"apls"`
	GlobalStateSchema StateSchema  `codec:"apgs"`
	ApprovalProgram   []byte       `codec:"apap"`
	ClearStateProgram []byte       `codec:"apsu"`
	ExtraProgramPages uint32       `codec:"apep"`
}

// Transaction is the tagged union of all transaction kinds: the Type field
// selects which of the embedded field records is meaningful, and canonical
// encoding omits the rest. Equality is structural.
type Transaction struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Type TxType `codec:"type"`

	Header
	KeyregTxnFields
	PaymentTxnFields
	AssetConfigTxnFields
	AssetTransferTxnFields
	AssetFreezeTxnFields
	ApplicationCallTxnFields
}

// txIDPrefix domain-separates transaction hashes.
var txIDPrefix = []byte("TX")

// tgPrefix domain-separates group hashes.
var tgPrefix = []byte("TG")

// EncodeRaw returns the canonical msgpack encoding of the transaction with
// no domain-separation prefix.
func (tx Transaction) EncodeRaw() []byte {
	return msgpack.Encode(tx)
}

// BytesToSign returns the prefixed canonical encoding that signers operate
// on and that the transaction id is derived from.
func (tx Transaction) BytesToSign() []byte {
	encoded := tx.EncodeRaw()
	prefixed := make([]byte, 0, len(txIDPrefix)+len(encoded))
	prefixed = append(prefixed, txIDPrefix...)
	prefixed = append(prefixed, encoded...)
	return prefixed
}

// IDRaw returns the transaction id as a raw digest.
func (tx Transaction) IDRaw() Digest {
	return Digest(sha512.Sum512_256(tx.BytesToSign()))
}

// ID returns the transaction id in its textual form: unpadded base32 of the
// raw digest.
func (tx Transaction) ID() string {
	digest := tx.IDRaw()
	return base32Encoder.EncodeToString(digest[:])
}

// EstimateEncodedSize returns the expected canonical size of the transaction
// once wrapped in a signature envelope. Per-byte fees are computed against
// this size.
func (tx Transaction) EstimateEncodedSize() int {
	return len(tx.EncodeRaw()) + SignatureEncodingIncr
}

// DecodeTransaction decodes a canonical transaction encoding.
func DecodeTransaction(b []byte) (Transaction, error) {
	var tx Transaction
	if err := msgpack.Decode(b, &tx); err != nil {
		return Transaction{}, fmt.Errorf("failed to decode transaction: %w", err)
	}
	switch tx.Type {
	case PaymentTx, KeyRegistrationTx, AssetConfigTx, AssetTransferTx, AssetFreezeTx, ApplicationCallTx:
	default:
		return Transaction{}, fmt.Errorf("unknown transaction type %q", tx.Type)
	}
	return tx, nil
}

// FeeParams drives fee computation for a single transaction.
type FeeParams struct {
	// FeePerByte is the suggested fee per encoded byte.
	FeePerByte MicroAlgos

	// MinFee is the protocol's flat fee floor.
	MinFee MicroAlgos

	// ExtraFee is added on top of the computed fee, typically to cover
	// inner transactions or a pooled-fee sibling.
	ExtraFee MicroAlgos

	// MaxFee, when non-zero, bounds the computed fee.
	MaxFee MicroAlgos
}

// CalculateFee returns the fee for this transaction: the per-byte fee over
// the estimated encoded size, floored at MinFee, plus ExtraFee. An error is
// returned when MaxFee is set and exceeded.
func (tx Transaction) CalculateFee(params FeeParams) (MicroAlgos, error) {
	var fee MicroAlgos
	if params.FeePerByte > 0 {
		fee = params.FeePerByte * MicroAlgos(tx.EstimateEncodedSize())
	}
	if fee < params.MinFee {
		fee = params.MinFee
	}
	fee += params.ExtraFee

	if params.MaxFee > 0 && fee > params.MaxFee {
		return 0, fmt.Errorf("transaction fee %d µAlgo is greater than max fee %d µAlgo", fee, params.MaxFee)
	}
	return fee, nil
}

// AssignFee returns a copy of the transaction with its fee computed from
// params. Pinned fees should bypass this and set Header.Fee directly.
func (tx Transaction) AssignFee(params FeeParams) (Transaction, error) {
	fee, err := tx.CalculateFee(params)
	if err != nil {
		return Transaction{}, err
	}
	tx.Fee = fee
	return tx, nil
}

// txGroup is the object whose prefixed hash becomes the group id.
type txGroup struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	TxGroupHashes []Digest `codec:"txlist"`
}

// ComputeGroupID hashes the transaction ids of txns into an atomic group id.
// Transactions must not already carry a group assignment, and the group size
// must be within [1, MaxTxGroupSize].
func ComputeGroupID(txns []Transaction) (Digest, error) {
	if len(txns) == 0 || len(txns) > MaxTxGroupSize {
		return Digest{}, GroupSizeError{Size: len(txns)}
	}

	group := txGroup{TxGroupHashes: make([]Digest, len(txns))}
	for i, tx := range txns {
		if !tx.Group.IsZero() {
			return Digest{}, fmt.Errorf("transaction %d is already grouped", i)
		}
		group.TxGroupHashes[i] = tx.IDRaw()
	}

	encoded := msgpack.Encode(group)
	prefixed := make([]byte, 0, len(tgPrefix)+len(encoded))
	prefixed = append(prefixed, tgPrefix...)
	prefixed = append(prefixed, encoded...)
	return Digest(sha512.Sum512_256(prefixed)), nil
}

// AssignGroupID returns copies of txns with the computed group id set on
// every member. The input order is preserved and is part of the hash.
func AssignGroupID(txns []Transaction) ([]Transaction, error) {
	gid, err := ComputeGroupID(txns)
	if err != nil {
		return nil, err
	}
	grouped := make([]Transaction, len(txns))
	for i, tx := range txns {
		tx.Group = gid
		grouped[i] = tx
	}
	return grouped, nil
}

// ValidateNote checks the note size constraint shared by all kinds.
func ValidateNote(note []byte) error {
	if len(note) > MaxNoteBytes {
		return InvalidFieldError{
			Field:  "note",
			Reason: fmt.Sprintf("%d bytes exceeds the maximum of %d", len(note), MaxNoteBytes),
		}
	}
	return nil
}

// LeaseFromBytes converts a variable-length lease into its fixed form. The
// input must be empty or exactly LeaseByteLength bytes.
func LeaseFromBytes(lease []byte) ([LeaseByteLength]byte, error) {
	var out [LeaseByteLength]byte
	if len(lease) == 0 {
		return out, nil
	}
	if len(lease) != LeaseByteLength {
		return out, InvalidFieldError{
			Field:  "lease",
			Reason: fmt.Sprintf("expected 0 or %d bytes, got %d", LeaseByteLength, len(lease)),
		}
	}
	copy(out[:], lease)
	return out, nil
}
