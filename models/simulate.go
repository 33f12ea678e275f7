package models

import (
	"github.com/algorandfoundation/algokit-go/types"
)

// Tags under which the simulation models are registered.
const (
	TagSimulateRequest  = "simulate.request"
	TagSimulateResponse = "simulate.response"
)

// SimulateRequestTransactionGroup is one transaction group to simulate.
type SimulateRequestTransactionGroup struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Txns []types.SignedTxn `codec:"txns"`
}

// SimulateTraceConfig selects which execution traces the evaluator returns.
type SimulateTraceConfig struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Enable        bool `codec:"enable"`
	StackChange   bool `codec:"stack-change"`
	ScratchChange bool `codec:"scratch-change"`
	StateChange   bool `codec:"state-change"`
}

// SimulateRequest is the request body of the simulate endpoint.
type SimulateRequest struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	TxnGroups            []SimulateRequestTransactionGroup `codec:"txn-groups"`
	Round                types.Round                       `codec:"round"`
	AllowEmptySignatures bool                              `codec:"allow-empty-signatures"`
	AllowMoreLogging     bool                              `codec:"allow-more-logging"`
	AllowUnnamedRes      bool                              `codec:"allow-unnamed-resources"`
	ExtraOpcodeBudget    uint64                            `codec:"extra-opcode-budget"`
	ExecTraceConfig      SimulateTraceConfig               `codec:"exec-trace-config"`
}

// PendingTransactionResponse is the evaluation result of one transaction.
type PendingTransactionResponse struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Txn            types.SignedTxn  `codec:"txn"`
	PoolError      string           `codec:"pool-error"`
	ConfirmedRound types.Round      `codec:"confirmed-round"`
	AppIndex       types.AppIndex   `codec:"application-index"`
	AssetIndex     types.AssetIndex `codec:"asset-index"`
	CloseAmount    types.MicroAlgos `codec:"closing-amount"`
	Logs           [][]byte         `codec:"logs"`
}

// SimulateTransactionResult holds the outcome for one transaction in a
// simulated group.
type SimulateTransactionResult struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	TxnResult              PendingTransactionResponse `codec:"txn-result"`
	AppBudgetConsumed      uint64                     `codec:"app-budget-consumed"`
	LogicSigBudgetConsumed uint64                     `codec:"logic-sig-budget-consumed"`
}

// SimulateTransactionGroupResult holds the outcome for one simulated group.
type SimulateTransactionGroupResult struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	TxnResults        []SimulateTransactionResult `codec:"txn-results"`
	FailureMessage    string                      `codec:"failure-message"`
	FailedAt          []uint64                    `codec:"failed-at"`
	AppBudgetAdded    uint64                      `codec:"app-budget-added"`
	AppBudgetConsumed uint64                      `codec:"app-budget-consumed"`
}

// SimulateEvalOverrides reports the evaluation limits the simulator relaxed.
type SimulateEvalOverrides struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	AllowEmptySignatures bool   `codec:"allow-empty-signatures"`
	AllowUnnamedRes      bool   `codec:"allow-unnamed-resources"`
	MaxLogCalls          uint64 `codec:"max-log-calls"`
	MaxLogSize           uint64 `codec:"max-log-size"`
	ExtraOpcodeBudget    uint64 `codec:"extra-opcode-budget"`
}

// SimulateResponse is the response body of the simulate endpoint.
type SimulateResponse struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Version       uint64                           `codec:"version"`
	LastRound     types.Round                      `codec:"last-round"`
	TxnGroups     []SimulateTransactionGroupResult `codec:"txn-groups"`
	EvalOverrides SimulateEvalOverrides            `codec:"eval-overrides"`
}
