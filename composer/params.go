package composer

import (
	"github.com/algorandfoundation/algokit-go/crypto"
	"github.com/algorandfoundation/algokit-go/types"
)

// CommonParams carries the header fields shared by every intent kind. Nil
// pointer fields fall back to the suggested parameters at build time.
type CommonParams struct {
	Sender types.Address

	// Signer overrides signer-getter resolution for this intent.
	Signer crypto.TransactionSigner

	Note    []byte
	Lease   []byte
	RekeyTo types.Address

	// StaticFee pins the fee, bypassing fee calculation entirely.
	StaticFee *types.MicroAlgos

	// ExtraFee is added on top of the calculated fee, typically to cover a
	// pooled-fee sibling. Ignored when StaticFee is set.
	ExtraFee types.MicroAlgos

	// MaxFee, when non-zero, bounds the calculated fee.
	MaxFee types.MicroAlgos

	// FirstValid defaults to the network's latest round.
	FirstValid *types.Round

	// LastValid defaults to FirstValid plus ValidityWindow.
	LastValid *types.Round

	// ValidityWindow defaults to 10 rounds, or 1000 on localnet.
	ValidityWindow *types.Round
}

// validate checks the field shape constraints that fail at add time.
func (p CommonParams) validate() ([types.LeaseByteLength]byte, error) {
	if err := types.ValidateNote(p.Note); err != nil {
		return [types.LeaseByteLength]byte{}, err
	}
	return types.LeaseFromBytes(p.Lease)
}

// PaymentParams describes a payment intent.
type PaymentParams struct {
	CommonParams

	Receiver types.Address
	Amount   types.MicroAlgos

	// CloseRemainderTo closes the sender account, sending its remaining
	// balance to this address.
	CloseRemainderTo types.Address
}

// AssetTransferParams describes an asset transfer intent. Opt-in is a zero
// amount transfer to self; a non-zero AssetSender is a clawback.
type AssetTransferParams struct {
	CommonParams

	AssetID     types.AssetIndex
	Amount      uint64
	Receiver    types.Address
	AssetSender types.Address
	CloseTo     types.Address
}

// AssetConfigParams describes asset creation, reconfiguration, and
// destruction. AssetID zero creates; zero AssetParams on an existing asset
// destroys.
type AssetConfigParams struct {
	CommonParams

	AssetID types.AssetIndex
	Params  types.AssetParams
}

// AssetFreezeParams freezes or unfreezes an account's asset holding.
type AssetFreezeParams struct {
	CommonParams

	AssetID types.AssetIndex
	Target  types.Address
	Frozen  bool
}

// KeyRegParams describes a key registration intent. Zero participation keys
// with Nonparticipation unset take the account offline.
type KeyRegParams struct {
	CommonParams

	VotePK           [32]byte
	SelectionPK      [32]byte
	StateProofPK     [64]byte
	VoteFirst        types.Round
	VoteLast         types.Round
	VoteKeyDilution  uint64
	Nonparticipation bool
}

// AppCallParams describes an application call intent. AppID zero creates an
// application. Args are passed through verbatim; ABIArgs are encoded with
// the ABI codec and appended after Args.
type AppCallParams struct {
	CommonParams

	AppID        types.AppIndex
	OnCompletion types.OnCompletion

	Args    [][]byte
	ABIArgs []ABIArg

	Accounts      []types.Address
	ForeignApps   []types.AppIndex
	ForeignAssets []types.AssetIndex
	Boxes         []types.BoxRef

	ApprovalProgram   []byte
	ClearStateProgram []byte
	GlobalStateSchema types.StateSchema
	LocalStateSchema  types.StateSchema
	ExtraProgramPages uint32
}
