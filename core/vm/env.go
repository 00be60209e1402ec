package vm

import (
	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/log"
	"github.com/ethexec/ethexec/params"
	"github.com/holiman/uint256"
)

// CfgEnv carries chain-level configuration.
type CfgEnv struct {
	ChainID uint64
	SpecID  params.SpecID

	// PerfAllPrecompilesHaveBalance pre-loads precompile accounts without
	// database queries; their backing balances are reconciled at
	// finalisation.
	PerfAllPrecompilesHaveBalance bool

	// Logger receives debug-level transaction lifecycle events. Nil means
	// the package default.
	Logger *log.Logger
}

// BlockEnv carries the enclosing block's fields.
type BlockEnv struct {
	Coinbase   types.Address
	Number     uint256.Int
	Timestamp  uint256.Int
	Difficulty uint256.Int
	GasLimit   uint256.Int
	Basefee    uint256.Int
}

// CreateScheme selects between the two contract-creation address schemes.
type CreateScheme uint8

const (
	SchemeCreate CreateScheme = iota
	SchemeCreate2
)

// TransactTo is a transaction's destination: a call target, or a creation
// scheme when CallTo is nil.
type TransactTo struct {
	CallTo *types.Address
	Scheme CreateScheme
	Salt   uint256.Int
}

// Call builds a call destination.
func Call(addr types.Address) TransactTo {
	return TransactTo{CallTo: &addr}
}

// Create builds a plain-CREATE destination.
func Create() TransactTo {
	return TransactTo{Scheme: SchemeCreate}
}

// Create2 builds a CREATE2 destination with the given salt.
func Create2(salt uint256.Int) TransactTo {
	return TransactTo{Scheme: SchemeCreate2, Salt: salt}
}

// IsCreate reports whether the destination is a contract creation.
func (t *TransactTo) IsCreate() bool {
	return t.CallTo == nil
}

// TxEnv carries the transaction's fields. GasPrice is the max fee per gas
// for EIP-1559 transactions and the literal price for legacy ones;
// GasPriorityFee is nil for legacy transactions.
type TxEnv struct {
	Caller         types.Address
	GasPrice       uint256.Int
	GasPriorityFee *uint256.Int
	GasLimit       uint64
	TransactTo     TransactTo
	Value          uint256.Int
	Data           []byte
	ChainID        *uint64
	Nonce          *uint64
	AccessList     types.AccessList
}

// Env is the complete input of one transaction execution.
type Env struct {
	Cfg   CfgEnv
	Block BlockEnv
	Tx    TxEnv
}

// EffectiveGasPrice returns the gas price actually paid per unit:
// min(maxFee, basefee + priorityFee) for EIP-1559 transactions, the literal
// gas price otherwise.
func (e *Env) EffectiveGasPrice() uint256.Int {
	if e.Tx.GasPriorityFee == nil {
		return e.Tx.GasPrice
	}
	effective := new(uint256.Int).Add(&e.Block.Basefee, e.Tx.GasPriorityFee)
	if e.Tx.GasPrice.Lt(effective) {
		return e.Tx.GasPrice
	}
	return *effective
}

// TransactOut is the output payload of a transaction: nothing, call return
// data, or, for a creation, the contract address plus the init frame's
// return data when that frame fails. A successful creation carries no
// output bytes; the deployed code lives in the state diff.
type TransactOut struct {
	Data        []byte
	CreatedAddr *types.Address
	IsCreate    bool
}

// ExecutionResult is the outcome of one transaction.
type ExecutionResult struct {
	ExitReason  ExitCode
	Out         TransactOut
	GasUsed     uint64
	GasRefunded uint64
	Logs        []types.Log
}
