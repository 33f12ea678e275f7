package composer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algorandfoundation/algokit-go/crypto"
	"github.com/algorandfoundation/algokit-go/models"
	"github.com/algorandfoundation/algokit-go/types"
)

type mockParamsSource struct {
	mock.Mock
}

func (m *mockParamsSource) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.SuggestedParams), args.Error(1)
}

type fakeSubmitter struct {
	submitted []byte
	err       error
}

func (f *fakeSubmitter) SubmitRaw(ctx context.Context, stxns []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.submitted = stxns
	return "txid", nil
}

type fakeSimulator struct {
	request models.SimulateRequest
}

func (f *fakeSimulator) SimulateRaw(ctx context.Context, request models.SimulateRequest) (models.SimulateResponse, error) {
	f.request = request
	return models.SimulateResponse{Version: 2}, nil
}

// countingSigner records how often and with which indices it is invoked.
type countingSigner struct {
	inner   crypto.TransactionSigner
	calls   int
	indices [][]int
}

func (s *countingSigner) SignTransactions(group []types.Transaction, indices []int) ([]types.SignedTxn, error) {
	s.calls++
	s.indices = append(s.indices, indices)
	return s.inner.SignTransactions(group, indices)
}

type failingSigner struct{}

func (failingSigner) SignTransactions(group []types.Transaction, indices []int) ([]types.SignedTxn, error) {
	return nil, errors.New("hardware wallet unplugged")
}

func testSuggestedParams(t *testing.T) types.SuggestedParams {
	t.Helper()
	gh, err := base64.StdEncoding.DecodeString("SGO1GKSzyE7IEPItTxCByw9x8FmnrCDexi9/cOUJOiI=")
	require.NoError(t, err)
	var digest types.Digest
	copy(digest[:], gh)

	return types.SuggestedParams{
		FeePerByte:  1,
		MinFee:      1000,
		FirstValid:  100,
		LastValid:   1100,
		GenesisID:   "testnet-v1.0",
		GenesisHash: digest,
	}
}

func newTestComposer(t *testing.T, opts Options) (*Composer, *mockParamsSource) {
	t.Helper()
	source := new(mockParamsSource)
	source.On("SuggestedParams", mock.Anything).Return(testSuggestedParams(t), nil)
	opts.Params = source
	return New(opts), source
}

func paymentParams(t *testing.T, signer crypto.TransactionSigner, sender types.Address, amount types.MicroAlgos) PaymentParams {
	t.Helper()
	var receiver types.Address
	receiver[0] = 9
	return PaymentParams{
		CommonParams: CommonParams{Sender: sender, Signer: signer},
		Receiver:     receiver,
		Amount:       amount,
	}
}

func TestBuildSinglePaymentImplicitFee(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	c, source := newTestComposer(t, Options{})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000000)))

	txns, err := c.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, StateBuilt, c.State())

	tx := txns[0]
	// per-byte fee is below the floor for a payment of this size
	assert.Equal(t, types.MicroAlgos(1000), tx.Fee)
	assert.True(t, tx.Group.IsZero())
	assert.Equal(t, types.Round(100), tx.FirstValid)
	assert.Equal(t, types.Round(110), tx.LastValid)
	assert.Equal(t, "testnet-v1.0", tx.GenesisID)

	ids, err := c.TxIDs()
	require.NoError(t, err)
	assert.Equal(t, tx.ID(), ids[0])

	source.AssertNumberOfCalls(t, "SuggestedParams", 1)

	// build is idempotent once the group is frozen
	again, err := c.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, txns, again)
	source.AssertNumberOfCalls(t, "SuggestedParams", 1)
}

func TestBuildGroupOfTwo(t *testing.T) {
	a, err := crypto.GenerateAccount()
	require.NoError(t, err)
	b, err := crypto.GenerateAccount()
	require.NoError(t, err)

	c, _ := newTestComposer(t, Options{
		Signers: SignerMap{
			a.Address: crypto.NewAccountSigner(a),
			b.Address: crypto.NewAccountSigner(b),
		},
	})
	require.NoError(t, c.AddPayment(paymentParams(t, nil, a.Address, 1000)))
	require.NoError(t, c.AddPayment(paymentParams(t, nil, b.Address, 2000)))

	txns, err := c.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.False(t, txns[0].Group.IsZero())
	assert.Equal(t, txns[0].Group, txns[1].Group)

	// the group id hashes the member txids as encoded with group zero
	ungrouped := make([]types.Transaction, 2)
	for i, tx := range txns {
		tx.Group = types.Digest{}
		ungrouped[i] = tx
	}
	gid, err := types.ComputeGroupID(ungrouped)
	require.NoError(t, err)
	assert.Equal(t, gid, txns[0].Group)

	stxns, err := c.GatherSignatures(context.Background())
	require.NoError(t, err)
	require.Len(t, stxns, 2)
	assert.Equal(t, txns[0], stxns[0].Txn)
	assert.Equal(t, txns[1], stxns[1].Txn)
	assert.Equal(t, StateSigned, c.State())

	encoded, err := c.EncodedSigned()
	require.NoError(t, err)
	assert.Equal(t, types.EncodeSignedGroup(stxns), encoded)
}

func TestBuildGroupOfSeventeen(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	c, _ := newTestComposer(t, Options{})
	for i := 0; i < 17; i++ {
		require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, types.MicroAlgos(i+1))))
	}

	_, err = c.Build(context.Background())
	require.Error(t, err)
	var gse types.GroupSizeError
	assert.ErrorAs(t, err, &gse)
	assert.Equal(t, 17, gse.Size)
	assert.Equal(t, StateOpen, c.State())
}

func TestBuildEmpty(t *testing.T) {
	c, _ := newTestComposer(t, Options{})
	_, err := c.Build(context.Background())
	var gse types.GroupSizeError
	assert.ErrorAs(t, err, &gse)
	assert.Equal(t, StateOpen, c.State())
}

func TestBuildValidityWindowTooWide(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	window := types.Round(2000)
	params := paymentParams(t, signer, acct.Address, 1000)
	params.ValidityWindow = &window

	c, _ := newTestComposer(t, Options{})
	require.NoError(t, c.AddPayment(params))

	_, err = c.Build(context.Background())
	require.Error(t, err)
	var vwe ValidityWindowError
	require.ErrorAs(t, err, &vwe)
	assert.Equal(t, types.Round(100), vwe.FirstValid)
	assert.Equal(t, types.Round(2100), vwe.LastValid)
	assert.Equal(t, StateOpen, c.State())
}

func TestBuildLocalnetDefaultWindow(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	suggested := testSuggestedParams(t)
	suggested.GenesisID = "dockernet-v1"

	c := New(Options{SuggestedParams: &suggested})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000)))

	txns, err := c.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Round(1100), txns[0].LastValid)
}

func TestBuildStaticAndMaxFee(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	static := types.MicroAlgos(5000)
	pinned := paymentParams(t, signer, acct.Address, 1000)
	pinned.StaticFee = &static

	c, _ := newTestComposer(t, Options{})
	require.NoError(t, c.AddPayment(pinned))
	txns, err := c.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, static, txns[0].Fee)

	capped := paymentParams(t, signer, acct.Address, 1000)
	capped.MaxFee = 500
	c2, _ := newTestComposer(t, Options{})
	require.NoError(t, c2.AddPayment(capped))
	_, err = c2.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateOpen, c2.State())
}

func TestAddValidation(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)
	c, _ := newTestComposer(t, Options{})

	oversized := paymentParams(t, signer, acct.Address, 1000)
	oversized.Note = make([]byte, types.MaxNoteBytes+1)
	err = c.AddPayment(oversized)
	var ife types.InvalidFieldError
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, "note", ife.Field)

	badLease := paymentParams(t, signer, acct.Address, 1000)
	badLease.Lease = []byte{1, 2, 3}
	err = c.AddPayment(badLease)
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, "lease", ife.Field)

	assert.Equal(t, 0, c.Len())
}

func TestSealedAfterBuild(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	c, _ := newTestComposer(t, Options{})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000)))
	_, err = c.Build(context.Background())
	require.NoError(t, err)

	err = c.AddPayment(paymentParams(t, signer, acct.Address, 2000))
	assert.ErrorIs(t, err, ErrSealed)
	err = c.AddTransaction(types.Transaction{}, signer)
	assert.ErrorIs(t, err, ErrSealed)
}

func TestGatherSignaturesNoSigner(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)

	getter := SignerMap{}
	c, _ := newTestComposer(t, Options{Signers: getter})
	require.NoError(t, c.AddPayment(paymentParams(t, nil, acct.Address, 1000)))
	_, err = c.Build(context.Background())
	require.NoError(t, err)

	_, err = c.GatherSignatures(context.Background())
	require.Error(t, err)
	var nse NoSignerError
	require.ErrorAs(t, err, &nse)
	assert.Equal(t, acct.Address, nse.Address)
	assert.Equal(t, StateBuilt, c.State())

	// once the getter knows the sender, signing succeeds
	getter[acct.Address] = crypto.NewAccountSigner(acct)
	stxns, err := c.GatherSignatures(context.Background())
	require.NoError(t, err)
	require.Len(t, stxns, 1)
	assert.Equal(t, StateSigned, c.State())
}

func TestGatherSignaturesFailureKeepsBuilt(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)

	c, _ := newTestComposer(t, Options{})
	require.NoError(t, c.AddPayment(paymentParams(t, failingSigner{}, acct.Address, 1000)))
	_, err = c.Build(context.Background())
	require.NoError(t, err)

	_, err = c.GatherSignatures(context.Background())
	require.Error(t, err)
	var sfe SignerFailedError
	require.ErrorAs(t, err, &sfe)
	assert.Equal(t, 0, sfe.Index)
	assert.Equal(t, StateBuilt, c.State())
}

func TestGatherSignaturesBeforeBuild(t *testing.T) {
	c, _ := newTestComposer(t, Options{})
	_, err := c.GatherSignatures(context.Background())
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestGatherSignaturesDeduplicatesSigners(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	other, err := crypto.GenerateAccount()
	require.NoError(t, err)

	shared := &countingSigner{inner: crypto.NewAccountSigner(acct)}
	otherSigner := crypto.NewAccountSigner(other)

	c, _ := newTestComposer(t, Options{})
	require.NoError(t, c.AddPayment(paymentParams(t, shared, acct.Address, 1)))
	require.NoError(t, c.AddPayment(paymentParams(t, otherSigner, other.Address, 2)))
	require.NoError(t, c.AddPayment(paymentParams(t, shared, acct.Address, 3)))

	_, err = c.Build(context.Background())
	require.NoError(t, err)
	stxns, err := c.GatherSignatures(context.Background())
	require.NoError(t, err)
	require.Len(t, stxns, 3)

	// one invocation with both indices, not one per transaction
	assert.Equal(t, 1, shared.calls)
	assert.Equal(t, [][]int{{0, 2}}, shared.indices)
}

func TestGatherSignaturesCancelled(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	c, _ := newTestComposer(t, Options{})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000)))
	_, err = c.Build(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.GatherSignatures(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateBuilt, c.State())
}

func TestBuildParamsFetchFailure(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	source := new(mockParamsSource)
	source.On("SuggestedParams", mock.Anything).Return(types.SuggestedParams{}, fmt.Errorf("connection refused"))

	c := New(Options{Params: source})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000)))

	_, err = c.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateOpen, c.State())
}

func TestAddTransactionPrebuilt(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	suggested := testSuggestedParams(t)
	tx := types.Transaction{
		Type: types.PaymentTx,
		Header: types.Header{
			Sender:      acct.Address,
			Fee:         4242,
			FirstValid:  500,
			LastValid:   600,
			GenesisID:   suggested.GenesisID,
			GenesisHash: suggested.GenesisHash,
		},
		PaymentTxnFields: types.PaymentTxnFields{Receiver: acct.Address, Amount: 7},
	}

	source := new(mockParamsSource)
	c := New(Options{Params: source})
	require.NoError(t, c.AddTransaction(tx, signer))

	// a fully built transaction needs no suggested params fetch
	txns, err := c.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tx, txns[0])
	source.AssertNotCalled(t, "SuggestedParams", mock.Anything)
}

func TestSend(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	submitter := &fakeSubmitter{}
	c, _ := newTestComposer(t, Options{Submitter: submitter})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000)))

	ids, err := c.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, StateSubmitted, c.State())

	encoded, err := c.EncodedSigned()
	require.NoError(t, err)
	assert.Equal(t, encoded, submitter.submitted)

	err = c.AddPayment(paymentParams(t, signer, acct.Address, 1))
	assert.ErrorIs(t, err, ErrSealed)
}

func TestSendRejected(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	submitter := &fakeSubmitter{err: errors.New("overspend")}
	c, _ := newTestComposer(t, Options{Submitter: submitter})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000)))

	_, err = c.Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())
}

func TestSimulateUnsignedEnvelopes(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	simulator := &fakeSimulator{}
	c, _ := newTestComposer(t, Options{Simulator: simulator})
	require.NoError(t, c.AddPayment(paymentParams(t, signer, acct.Address, 1000)))

	resp, err := c.Simulate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resp.Version)
	assert.Equal(t, StateBuilt, c.State())

	require.Len(t, simulator.request.TxnGroups, 1)
	group := simulator.request.TxnGroups[0]
	require.Len(t, group.Txns, 1)
	assert.True(t, group.Txns[0].Sig.Blank())
	assert.True(t, simulator.request.AllowEmptySignatures)
}

func TestAppCallWithManyABIArgs(t *testing.T) {
	acct, err := crypto.GenerateAccount()
	require.NoError(t, err)
	signer := crypto.NewAccountSigner(acct)

	uint64Type := mustType(t, "uint64")
	args := make([]ABIArg, 20)
	for i := range args {
		args[i] = ABIArg{Type: uint64Type, Value: uint64(i + 1)}
	}

	c, _ := newTestComposer(t, Options{})
	require.NoError(t, c.AddAppCall(AppCallParams{
		CommonParams: CommonParams{Sender: acct.Address, Signer: signer},
		AppID:        123,
		ABIArgs:      args,
	}))

	txns, err := c.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 1)

	// 14 direct arguments plus the packed tail tuple
	encoded := txns[0].ApplicationArgs
	require.Len(t, encoded, 15)
	assert.Len(t, encoded[0], 8)
	assert.Len(t, encoded[14], 6*8)
}
