package composer

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/algorandfoundation/algokit-go/crypto"
	"github.com/algorandfoundation/algokit-go/loggers"
	"github.com/algorandfoundation/algokit-go/models"
	"github.com/algorandfoundation/algokit-go/types"
	"github.com/algorandfoundation/algokit-go/util/metrics"
)

// State tracks a composer through its one-way lifecycle.
type State int

const (
	// StateOpen accepts intents.
	StateOpen State = iota

	// StateBuilt holds an immutable transaction group.
	StateBuilt

	// StateSigned holds signature envelopes for the whole group.
	StateSigned

	// StateSubmitted means the group was accepted by the network.
	StateSubmitted

	// StateFailed means submission was rejected.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateBuilt:
		return "BUILT"
	case StateSigned:
		return "SIGNED"
	case StateSubmitted:
		return "SUBMITTED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// defaultValidityWindow is the default number of rounds a built
	// transaction stays valid for.
	defaultValidityWindow = types.Round(10)

	// localnetValidityWindow replaces the default on development networks,
	// where rounds advance on demand.
	localnetValidityWindow = types.Round(1000)
)

// GenesisIDIsLocalNet reports whether a genesis id belongs to a development
// network.
func GenesisIDIsLocalNet(genesisID string) bool {
	return genesisID == "devnet-v1" || genesisID == "sandnet-v1" || genesisID == "dockernet-v1"
}

// intent is one queued transaction: its common parameters plus a closure
// completing the kind-specific body around the build-time header.
type intent struct {
	common   CommonParams
	lease    [types.LeaseByteLength]byte
	fill     func(hdr types.Header) types.Transaction
	prebuilt *types.Transaction
}

// Options configures a Composer. Params is required for building unless
// SuggestedParams is set; the remaining collaborators are required only by
// the operations that use them.
type Options struct {
	Params    ParamsSource
	Submitter Submitter
	Simulator Simulator
	Signers   SignerGetter

	// SuggestedParams, when set, is used for every build instead of
	// consulting Params.
	SuggestedParams *types.SuggestedParams

	Logger *log.Logger
}

// Composer accumulates transaction intents, builds them into an atomic
// group, collects signatures, and submits. It is a single-owner object:
// sharing one across goroutines requires external synchronization.
type Composer struct {
	state   State
	intents []intent

	params    ParamsSource
	submitter Submitter
	simulator Simulator
	signers   SignerGetter
	suggested *types.SuggestedParams

	built  []types.Transaction
	signed []types.SignedTxn

	logger *log.Logger
}

// New creates an empty composer in the OPEN state.
func New(opts Options) *Composer {
	logger := opts.Logger
	if logger == nil {
		logger = loggers.MakeLogger(log.InfoLevel, os.Stderr)
	}
	return &Composer{
		state:     StateOpen,
		params:    opts.Params,
		submitter: opts.Submitter,
		simulator: opts.Simulator,
		signers:   opts.Signers,
		suggested: opts.SuggestedParams,
		logger:    logger,
	}
}

// State returns the composer's current lifecycle state.
func (c *Composer) State() State {
	return c.state
}

// Len returns the number of queued intents.
func (c *Composer) Len() int {
	return len(c.intents)
}

func (c *Composer) add(common CommonParams, fill func(hdr types.Header) types.Transaction) error {
	if c.state != StateOpen {
		return ErrSealed
	}
	lease, err := common.validate()
	if err != nil {
		return err
	}
	c.intents = append(c.intents, intent{common: common, lease: lease, fill: fill})
	return nil
}

// AddPayment queues a payment intent.
func (c *Composer) AddPayment(params PaymentParams) error {
	return c.add(params.CommonParams, func(hdr types.Header) types.Transaction {
		return types.Transaction{
			Type:   types.PaymentTx,
			Header: hdr,
			PaymentTxnFields: types.PaymentTxnFields{
				Receiver:         params.Receiver,
				Amount:           params.Amount,
				CloseRemainderTo: params.CloseRemainderTo,
			},
		}
	})
}

// AddAssetTransfer queues an asset transfer intent.
func (c *Composer) AddAssetTransfer(params AssetTransferParams) error {
	return c.add(params.CommonParams, func(hdr types.Header) types.Transaction {
		return types.Transaction{
			Type:   types.AssetTransferTx,
			Header: hdr,
			AssetTransferTxnFields: types.AssetTransferTxnFields{
				XferAsset:     params.AssetID,
				AssetAmount:   params.Amount,
				AssetSender:   params.AssetSender,
				AssetReceiver: params.Receiver,
				AssetCloseTo:  params.CloseTo,
			},
		}
	})
}

// AddAssetConfig queues an asset create, reconfigure, or destroy intent.
func (c *Composer) AddAssetConfig(params AssetConfigParams) error {
	return c.add(params.CommonParams, func(hdr types.Header) types.Transaction {
		return types.Transaction{
			Type:   types.AssetConfigTx,
			Header: hdr,
			AssetConfigTxnFields: types.AssetConfigTxnFields{
				ConfigAsset: params.AssetID,
				AssetParams: params.Params,
			},
		}
	})
}

// AddAssetFreeze queues an asset freeze intent.
func (c *Composer) AddAssetFreeze(params AssetFreezeParams) error {
	return c.add(params.CommonParams, func(hdr types.Header) types.Transaction {
		return types.Transaction{
			Type:   types.AssetFreezeTx,
			Header: hdr,
			AssetFreezeTxnFields: types.AssetFreezeTxnFields{
				FreezeAccount: params.Target,
				FreezeAsset:   params.AssetID,
				AssetFrozen:   params.Frozen,
			},
		}
	})
}

// AddKeyReg queues a key registration intent.
func (c *Composer) AddKeyReg(params KeyRegParams) error {
	return c.add(params.CommonParams, func(hdr types.Header) types.Transaction {
		return types.Transaction{
			Type:   types.KeyRegistrationTx,
			Header: hdr,
			KeyregTxnFields: types.KeyregTxnFields{
				VotePK:           params.VotePK,
				SelectionPK:      params.SelectionPK,
				StateProofPK:     params.StateProofPK,
				VoteFirst:        params.VoteFirst,
				VoteLast:         params.VoteLast,
				VoteKeyDilution:  params.VoteKeyDilution,
				Nonparticipation: params.Nonparticipation,
			},
		}
	})
}

// AddAppCall queues an application call intent. Typed ABI arguments are
// encoded here so malformed values fail at add time.
func (c *Composer) AddAppCall(params AppCallParams) error {
	args := params.Args
	if len(params.ABIArgs) > 0 {
		encoded, err := EncodeAppArgs(params.ABIArgs)
		if err != nil {
			return err
		}
		args = append(append([][]byte{}, args...), encoded...)
	}
	return c.add(params.CommonParams, func(hdr types.Header) types.Transaction {
		return types.Transaction{
			Type:   types.ApplicationCallTx,
			Header: hdr,
			ApplicationCallTxnFields: types.ApplicationCallTxnFields{
				ApplicationID:     params.AppID,
				OnCompletion:      params.OnCompletion,
				ApplicationArgs:   args,
				Accounts:          params.Accounts,
				ForeignApps:       params.ForeignApps,
				ForeignAssets:     params.ForeignAssets,
				Boxes:             params.Boxes,
				LocalStateSchema:  params.LocalStateSchema,
				GlobalStateSchema: params.GlobalStateSchema,
				ApprovalProgram:   params.ApprovalProgram,
				ClearStateProgram: params.ClearStateProgram,
				ExtraProgramPages: params.ExtraProgramPages,
			},
		}
	})
}

// AddTransaction queues a fully built transaction. Its header is used as is:
// no suggested-params defaulting and no fee calculation apply, but it
// participates in grouping like any other intent.
func (c *Composer) AddTransaction(tx types.Transaction, signer crypto.TransactionSigner) error {
	if c.state != StateOpen {
		return ErrSealed
	}
	if err := types.ValidateNote(tx.Note); err != nil {
		return err
	}
	c.intents = append(c.intents, intent{
		common:   CommonParams{Sender: tx.Sender, Signer: signer},
		prebuilt: &tx,
	})
	return nil
}

// needsParams reports whether any queued intent requires suggested
// parameters to complete its header.
func (c *Composer) needsParams() bool {
	for _, in := range c.intents {
		if in.prebuilt == nil {
			return true
		}
	}
	return false
}

func (c *Composer) suggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	if c.suggested != nil {
		return *c.suggested, nil
	}
	if c.params == nil {
		return types.SuggestedParams{}, fmt.Errorf("no parameter source configured")
	}
	params, err := c.params.SuggestedParams(ctx)
	if err != nil {
		return types.SuggestedParams{}, fmt.Errorf("fetching suggested params: %w", err)
	}
	return params, nil
}

// buildIntent completes one intent into a transaction with its final fee.
func buildIntent(in intent, params types.SuggestedParams, defaultWindow types.Round) (types.Transaction, error) {
	if in.prebuilt != nil {
		return *in.prebuilt, nil
	}

	common := in.common
	firstValid := params.FirstValid
	if common.FirstValid != nil {
		firstValid = *common.FirstValid
	}

	window := defaultWindow
	if common.ValidityWindow != nil {
		window = *common.ValidityWindow
	}
	lastValid := firstValid + window
	if common.LastValid != nil {
		lastValid = *common.LastValid
	}
	if lastValid < firstValid || lastValid-firstValid > types.MaxValidityWindow {
		return types.Transaction{}, ValidityWindowError{FirstValid: firstValid, LastValid: lastValid}
	}

	hdr := types.Header{
		Sender:      common.Sender,
		FirstValid:  firstValid,
		LastValid:   lastValid,
		Note:        common.Note,
		GenesisID:   params.GenesisID,
		GenesisHash: params.GenesisHash,
		Lease:       in.lease,
		RekeyTo:     common.RekeyTo,
	}
	tx := in.fill(hdr)

	if common.StaticFee != nil {
		tx.Fee = *common.StaticFee
		return tx, nil
	}
	return tx.AssignFee(types.FeeParams{
		FeePerByte: params.FeePerByte,
		MinFee:     params.MinFee,
		ExtraFee:   common.ExtraFee,
		MaxFee:     common.MaxFee,
	})
}

// Build freezes the queued intents into a transaction group: suggested
// parameters are fetched at most once, fees and validity windows are
// resolved, and groups of more than one transaction get their shared group
// id. On error the composer stays OPEN and Build may be retried.
func (c *Composer) Build(ctx context.Context) ([]types.Transaction, error) {
	switch c.state {
	case StateOpen:
	case StateBuilt, StateSigned, StateSubmitted, StateFailed:
		return c.built, nil
	}
	if len(c.intents) == 0 {
		return nil, types.GroupSizeError{Size: 0}
	}

	start := time.Now()

	var params types.SuggestedParams
	if c.needsParams() {
		var err error
		params, err = c.suggestedParams(ctx)
		if err != nil {
			return nil, err
		}
	}

	window := defaultValidityWindow
	if GenesisIDIsLocalNet(params.GenesisID) {
		window = localnetValidityWindow
	}

	txns := make([]types.Transaction, len(c.intents))
	for i, in := range c.intents {
		tx, err := buildIntent(in, params, window)
		if err != nil {
			return nil, fmt.Errorf("building transaction %d: %w", i, err)
		}
		txns[i] = tx
	}

	if len(txns) > 1 {
		grouped, err := types.AssignGroupID(txns)
		if err != nil {
			return nil, err
		}
		txns = grouped
	}

	c.built = txns
	c.state = StateBuilt

	metrics.GroupsBuilt.Inc()
	metrics.TxnsPerGroup.Observe(float64(len(txns)))
	metrics.GroupBuildTimeSeconds.Observe(time.Since(start).Seconds())
	c.logger.WithFields(log.Fields{
		"txns":  len(txns),
		"first": txns[0].ID(),
	}).Debug("built transaction group")
	return c.built, nil
}

// sameSigner reports whether two signers are the same instance. Signers of
// non-comparable dynamic types are never deduplicated.
func sameSigner(a, b crypto.TransactionSigner) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// resolveSigners maps every built transaction to a signer, preferring the
// per-intent override over the signer getter.
func (c *Composer) resolveSigners() ([]crypto.TransactionSigner, error) {
	signers := make([]crypto.TransactionSigner, len(c.intents))
	for i, in := range c.intents {
		if in.common.Signer != nil {
			signers[i] = in.common.Signer
			continue
		}
		if c.signers != nil {
			if signer, ok := c.signers.SignerFor(c.built[i].Sender); ok {
				signers[i] = signer
				continue
			}
		}
		return nil, NoSignerError{Address: c.built[i].Sender}
	}
	return signers, nil
}

// GatherSignatures collects signature envelopes for the built group. Each
// distinct signer is invoked exactly once with the whole group and the
// indices it is responsible for. On failure the composer stays BUILT and
// may be re-signed.
func (c *Composer) GatherSignatures(ctx context.Context) ([]types.SignedTxn, error) {
	switch c.state {
	case StateBuilt:
	case StateSigned, StateSubmitted, StateFailed:
		return c.signed, nil
	default:
		return nil, ErrNotBuilt
	}

	signers, err := c.resolveSigners()
	if err != nil {
		return nil, err
	}

	// group indices by signer identity, preserving first-seen order
	var distinct []crypto.TransactionSigner
	var indices [][]int
	for i, signer := range signers {
		found := false
		for j, seen := range distinct {
			if sameSigner(seen, signer) {
				indices[j] = append(indices[j], i)
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, signer)
			indices = append(indices, []int{i})
		}
	}

	signed := make([]types.SignedTxn, len(c.built))
	for j, signer := range distinct {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stxns, err := signer.SignTransactions(c.built, indices[j])
		if err != nil {
			return nil, SignerFailedError{Index: indices[j][0], Err: err}
		}
		if len(stxns) != len(indices[j]) {
			return nil, SignerFailedError{
				Index: indices[j][0],
				Err:   fmt.Errorf("signer returned %d envelopes for %d transactions", len(stxns), len(indices[j])),
			}
		}
		for k, idx := range indices[j] {
			signed[idx] = stxns[k]
		}
	}

	c.signed = signed
	c.state = StateSigned

	metrics.GroupsSigned.Inc()
	c.logger.WithField("txns", len(signed)).Debug("gathered signatures")
	return c.signed, nil
}

// Encoded returns the concatenated canonical encodings of the built group.
func (c *Composer) Encoded() ([]byte, error) {
	if c.state < StateBuilt {
		return nil, ErrNotBuilt
	}
	var out []byte
	for _, tx := range c.built {
		out = append(out, tx.EncodeRaw()...)
	}
	return out, nil
}

// EncodedSigned returns the concatenated envelope encodings of the signed
// group, the form the network's raw submission endpoint accepts.
func (c *Composer) EncodedSigned() ([]byte, error) {
	if c.state < StateSigned {
		return nil, ErrNotSigned
	}
	return types.EncodeSignedGroup(c.signed), nil
}

// TxIDs returns the transaction ids of the built group in group order.
func (c *Composer) TxIDs() ([]string, error) {
	if c.state < StateBuilt {
		return nil, ErrNotBuilt
	}
	ids := make([]string, len(c.built))
	for i, tx := range c.built {
		ids[i] = tx.ID()
	}
	return ids, nil
}

// Send builds and signs as needed, then submits the signed group. On
// success the composer becomes SUBMITTED and the group's transaction ids
// are returned; a rejected submission moves it to FAILED.
func (c *Composer) Send(ctx context.Context) ([]string, error) {
	if c.submitter == nil {
		return nil, fmt.Errorf("no submitter configured")
	}
	if c.state == StateSubmitted {
		return c.TxIDs()
	}
	if c.state == StateFailed {
		return nil, fmt.Errorf("group submission already failed")
	}

	if _, err := c.Build(ctx); err != nil {
		return nil, err
	}
	if _, err := c.GatherSignatures(ctx); err != nil {
		return nil, err
	}

	encoded, err := c.EncodedSigned()
	if err != nil {
		return nil, err
	}
	if _, err := c.submitter.SubmitRaw(ctx, encoded); err != nil {
		c.state = StateFailed
		metrics.GroupsFailed.Inc()
		c.logger.WithError(err).Warn("transaction group rejected")
		return nil, err
	}
	c.state = StateSubmitted

	ids := make([]string, len(c.built))
	for i, tx := range c.built {
		ids[i] = tx.ID()
	}
	metrics.GroupsSubmitted.Inc()
	c.logger.WithField("txid", ids[0]).Info("submitted transaction group")
	return ids, nil
}

// Simulate evaluates the group without committing it. Signed envelopes are
// used when available; otherwise unsigned envelopes are sent with empty
// signatures allowed. Building aside, Simulate does not advance the state
// machine.
func (c *Composer) Simulate(ctx context.Context) (models.SimulateResponse, error) {
	if c.simulator == nil {
		return models.SimulateResponse{}, fmt.Errorf("no simulator configured")
	}
	if _, err := c.Build(ctx); err != nil {
		return models.SimulateResponse{}, err
	}

	var stxns []types.SignedTxn
	if c.state >= StateSigned {
		stxns = c.signed
	} else {
		stxns = make([]types.SignedTxn, len(c.built))
		for i, tx := range c.built {
			stxns[i] = types.SignedTxn{Txn: tx}
		}
	}

	request := models.SimulateRequest{
		TxnGroups:            []models.SimulateRequestTransactionGroup{{Txns: stxns}},
		AllowEmptySignatures: true,
		AllowUnnamedRes:      true,
	}
	return c.simulator.SimulateRaw(ctx, request)
}
