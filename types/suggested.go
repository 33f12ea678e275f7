package types

// SuggestedParams are network-supplied defaults for fee and validity window.
// They are immutable once fetched; the composer consults its parameter
// source at most once per build.
type SuggestedParams struct {
	// FeePerByte is the suggested fee per encoded transaction byte. A
	// transaction always pays at least MinFee.
	FeePerByte MicroAlgos

	// MinFee is the protocol's flat minimum fee.
	MinFee MicroAlgos

	// FirstValid is the default first-valid round, normally the node's
	// latest round.
	FirstValid Round

	// LastValid is the default last round for which built transactions
	// stay valid.
	LastValid Round

	GenesisID   string
	GenesisHash Digest

	// ConsensusVersion reports the protocol the node is running. Purely
	// informational here.
	ConsensusVersion string
}
