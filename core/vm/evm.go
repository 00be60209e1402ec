// Package vm implements the transaction execution core: the end-to-end
// pipeline (validate, charge, dispatch, refund, finalise), the call/create
// frame handlers with precompile dispatch and fork-gated output policies,
// and the host facade the external interpreter calls back into.
package vm

import (
	"github.com/ethexec/ethexec/core/state"
	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/crypto"
	"github.com/ethexec/ethexec/log"
	"github.com/ethexec/ethexec/params"
	"github.com/holiman/uint256"
)

// EVM executes a single transaction against a pluggable world-state
// database. It owns the transaction's journaled state; create a fresh
// instance for each transaction. Execution is strictly single-threaded; the
// only shared surface is the Database, whose reads must be safe for
// concurrent readers.
type EVM struct {
	env         *Env
	db          state.Database
	journal     *state.JournaledState
	precompiles *Precompiles
	inspector   Inspector
	inspecting  bool
	interp      InterpreterFactory
	spec        params.SpecID
	logger      *log.Logger

	// dbErr latches the first database failure; once set, the transaction
	// unwinds and surfaces FatalExternalError.
	dbErr error
}

// Option configures an EVM.
type Option func(*EVM)

// WithInterpreter plugs in the bytecode interpreter.
func WithInterpreter(f InterpreterFactory) Option {
	return func(e *EVM) { e.interp = f }
}

// WithInspector attaches an inspector; its pre-hooks may short-circuit
// frames.
func WithInspector(i Inspector) Option {
	return func(e *EVM) {
		e.inspector = i
		e.inspecting = true
	}
}

// WithPrecompiles replaces the default registry for the active fork.
func WithPrecompiles(p *Precompiles) Option {
	return func(e *EVM) { e.precompiles = p }
}

// New creates an EVM for one transaction. Precompile accounts are
// pre-loaded into the journal: without database queries under
// PerfAllPrecompilesHaveBalance, from the database otherwise.
func New(env *Env, db state.Database, opts ...Option) *EVM {
	spec := env.Cfg.SpecID
	logger := env.Cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	e := &EVM{
		env:         env,
		db:          db,
		journal:     state.NewJournaledState(spec),
		precompiles: NewPrecompiles(spec),
		inspector:   NoOpInspector{},
		interp:      StopInterpreter{},
		spec:        spec,
		logger:      logger.Module("evm"),
	}
	for _, opt := range opts {
		opt(e)
	}

	addrs := e.precompiles.Addresses()
	if env.Cfg.PerfAllPrecompilesHaveBalance {
		e.journal.LoadPrecompilesDefault(addrs)
	} else {
		accounts := make(map[types.Address]types.AccountInfo, len(addrs))
		for _, addr := range addrs {
			info, err := db.Basic(addr)
			if err != nil {
				e.setFatal(err)
				break
			}
			if info == nil {
				accounts[addr] = types.NewAccountInfo()
			} else {
				accounts[addr] = *info
			}
		}
		e.journal.LoadPrecompiles(accounts)
	}
	return e
}

// NewWithRef creates an EVM over a read-only DatabaseRef.
func NewWithRef(env *Env, ref state.DatabaseRef, opts ...Option) *EVM {
	return New(env, state.WrapDatabaseRef(ref), opts...)
}

// Journal exposes the transaction's journaled state, mainly for tests and
// inspectors.
func (e *EVM) Journal() *state.JournaledState {
	return e.journal
}

func (e *EVM) setFatal(err error) {
	if e.dbErr == nil {
		e.dbErr = err
		e.logger.Error("database failure, unwinding transaction", "err", err)
	}
}

// fatalResult is the outcome of a latched database error: all gas consumed,
// no refund, no state diff.
func (e *EVM) fatalResult() (*ExecutionResult, map[types.Address]state.Account) {
	return &ExecutionResult{
		ExitReason: ExitFatalExternalError,
		GasUsed:    e.env.Tx.GasLimit,
	}, map[types.Address]state.Account{}
}

// Transact executes the transaction and returns the result together with
// the state diff to apply to the world state. Pre-flight failures return an
// empty diff and zero gas used.
func (e *EVM) Transact() (*ExecutionResult, map[types.Address]state.Account) {
	tx := &e.env.Tx
	caller := tx.Caller
	value := tx.Value
	gasLimit := tx.GasLimit

	exit := func(reason ExitCode) (*ExecutionResult, map[types.Address]state.Account) {
		e.logger.Debug("transaction rejected", "reason", reason.String())
		return &ExecutionResult{ExitReason: reason}, map[types.Address]state.Account{}
	}

	if e.dbErr != nil {
		return e.fatalResult()
	}

	if e.spec.Enabled(params.London) {
		if tx.GasPriorityFee != nil && tx.GasPriorityFee.Gt(&tx.GasPrice) {
			return exit(ExitGasMaxFeeGreaterThanPriorityFee)
		}
		effective := e.env.EffectiveGasPrice()
		if effective.Lt(&e.env.Block.Basefee) {
			return exit(ExitGasPriceLessThanBasefee)
		}
	}
	if uint256.NewInt(gasLimit).Gt(&e.env.Block.GasLimit) {
		return exit(ExitCallerGasLimitMoreThanBlock)
	}

	gas := NewGas(gasLimit)
	initCost, err := e.initialization()
	if err != nil {
		e.setFatal(err)
		return e.fatalResult()
	}
	if !gas.RecordCost(initCost) {
		return exit(ExitOutOfGas)
	}

	if _, err := e.journal.LoadAccount(caller, e.db); err != nil {
		e.setFatal(err)
		return e.fatalResult()
	}

	// EIP-3607: reject transactions from senders with deployed code. The
	// EIP postdates London but never collides earlier, so it stays enabled
	// for every fork.
	if e.journal.Account(caller).Info.CodeHash != types.KeccakEmpty {
		return exit(ExitRejectCallerWithCode)
	}

	// Debit gas_limit * effective_gas_price from the caller.
	effective := e.env.EffectiveGasPrice()
	payment, overflow := new(uint256.Int).MulOverflow(&effective, uint256.NewInt(gasLimit))
	if overflow {
		return exit(ExitOverflowPayment)
	}
	if !e.journal.BalanceSub(caller, payment) {
		return exit(ExitLackOfFundForGasLimit)
	}

	// The transfer value plus the unpaid max-fee reserve must still be
	// covered: together with the debit above this enforces
	// balance >= value + gas_limit * max_fee.
	reserve := new(uint256.Int).Sub(&tx.GasPrice, &effective)
	reserveTotal, overflow := reserve.MulOverflow(reserve, uint256.NewInt(gasLimit))
	if overflow {
		return exit(ExitOverflowPayment)
	}
	need, overflow := new(uint256.Int).AddOverflow(reserveTotal, &value)
	if overflow {
		return exit(ExitOverflowPayment)
	}
	if e.journal.Account(caller).Info.Balance.Lt(need) {
		return exit(ExitOutOfFund)
	}

	// Hand the whole remainder to the inner frame; unspent gas comes back
	// through reimbursement.
	innerLimit := gas.Remaining()
	gas.RecordCost(innerLimit)

	var (
		exitReason ExitCode
		retGas     *Gas
		out        TransactOut
	)
	if to := tx.TransactTo.CallTo; to != nil {
		e.journal.IncNonce(caller)
		inputs := &CallInputs{
			Contract: *to,
			Transfer: Transfer{Source: caller, Target: *to, Value: value},
			Input:    tx.Data,
			GasLimit: innerLimit,
			Context: CallContext{
				Caller:        caller,
				Address:       *to,
				ApparentValue: value,
			},
		}
		var bytes []byte
		exitReason, retGas, bytes = e.callInner(inputs)
		out = TransactOut{Data: bytes}
	} else {
		inputs := &CreateInputs{
			Caller:   caller,
			Scheme:   tx.TransactTo.Scheme,
			Salt:     tx.TransactTo.Salt,
			Value:    value,
			InitCode: tx.Data,
			GasLimit: innerLimit,
		}
		var addr *types.Address
		var bytes []byte
		exitReason, addr, retGas, bytes = e.createInner(inputs)
		out = TransactOut{Data: bytes, CreatedAddr: addr, IsCreate: true}
	}

	if e.dbErr != nil {
		return e.fatalResult()
	}

	gas.ReimburseUnspent(exitReason, retGas)

	diff, logs, gasUsed, refunded, err := e.finalizeTx(caller, gas)
	if err != nil {
		e.setFatal(err)
		return e.fatalResult()
	}

	e.logger.Debug("transaction executed",
		"reason", exitReason.String(), "gasUsed", gasUsed, "refunded", refunded)

	return &ExecutionResult{
		ExitReason:  exitReason,
		Out:         out,
		GasUsed:     gasUsed,
		GasRefunded: refunded,
		Logs:        logs,
	}, diff
}

// TransactCommit executes the transaction and applies the resulting diff to
// the database, which must implement state.DatabaseCommit.
func (e *EVM) TransactCommit() *ExecutionResult {
	result, diff := e.Transact()
	if committer, ok := e.db.(state.DatabaseCommit); ok {
		committer.Commit(diff)
	}
	return result
}

// initialization pre-warms the access list through the journal (Berlin+)
// and returns the intrinsic gas cost.
func (e *EVM) initialization() (uint64, error) {
	tx := &e.env.Tx
	if e.spec.Enabled(params.Berlin) {
		for _, tuple := range tx.AccessList {
			if _, err := e.journal.LoadAccount(tuple.Address, e.db); err != nil {
				return 0, err
			}
			for i := range tuple.StorageKeys {
				if _, _, err := e.journal.SLoad(tuple.Address, &tuple.StorageKeys[i], e.db); err != nil {
					return 0, err
				}
			}
		}
	}
	return IntrinsicGas(tx.Data, tx.AccessList, tx.TransactTo.IsCreate(), e.spec), nil
}

// finalizeTx refunds the caller, pays the coinbase, and drains the journal
// into the state diff.
func (e *EVM) finalizeTx(caller types.Address, gas *Gas) (map[types.Address]state.Account, []types.Log, uint64, uint64, error) {
	coinbase := e.env.Block.Coinbase
	effective := e.env.EffectiveGasPrice()

	quotient := params.RefundQuotient
	if e.spec.Enabled(params.London) {
		quotient = params.RefundQuotientEIP3529
	}
	refunded := e.journal.Refund()
	if maxRefund := gas.Spent() / quotient; refunded > maxRefund {
		refunded = maxRefund
	}

	credit := new(uint256.Int).Mul(&effective, uint256.NewInt(gas.Remaining()+refunded))
	e.journal.BalanceAdd(caller, credit)

	coinbasePrice := effective
	if e.spec.Enabled(params.London) {
		if coinbasePrice.Lt(&e.env.Block.Basefee) {
			coinbasePrice.Clear()
		} else {
			coinbasePrice.Sub(&coinbasePrice, &e.env.Block.Basefee)
		}
	}

	// The coinbase is touched even when its payment is zero; EIP-158 state
	// clearing may later prune it.
	if _, err := e.journal.LoadAccount(coinbase, e.db); err != nil {
		return nil, nil, 0, 0, err
	}
	payout := new(uint256.Int).Mul(&coinbasePrice, uint256.NewInt(gas.Spent()-refunded))
	e.journal.BalanceAdd(coinbase, payout)

	diff, logs := e.journal.Finalize()

	// Under the perf flag precompiles were loaded with zero balances; any
	// diff entry for one only holds the in-transaction delta, so fold the
	// backing balance in now.
	if e.env.Cfg.PerfAllPrecompilesHaveBalance {
		for _, addr := range e.precompiles.Addresses() {
			acc, ok := diff[addr]
			if !ok {
				continue
			}
			info, err := e.db.Basic(addr)
			if err != nil {
				return nil, nil, 0, 0, err
			}
			if info != nil {
				acc.Info.Balance.Add(&acc.Info.Balance, &info.Balance)
				diff[addr] = acc
			}
		}
	}

	return diff, logs, gas.Spent() - refunded, refunded, nil
}

// callInner runs one call frame: depth check, checkpoint, value transfer,
// precompile dispatch or interpreter execution, and commit/revert.
func (e *EVM) callInner(inputs *CallInputs) (ExitCode, *Gas, []byte) {
	if e.inspecting {
		ret, gasOverride, out := e.inspector.CallPre(e, inputs, inputs.IsStatic)
		if ret != ExitContinue {
			if gasOverride == nil {
				gasOverride = NewGas(inputs.GasLimit)
			}
			return e.inspector.CallPost(e, inputs, ret, gasOverride, out, inputs.IsStatic)
		}
	}

	gas := NewGas(inputs.GasLimit)

	// Loading the code marks the contract warm.
	acc, _, err := e.journal.LoadCode(inputs.Contract, e.db)
	if err != nil {
		e.setFatal(err)
		return ExitFatalExternalError, gas, nil
	}
	code := acc.Info.Code

	if e.journal.Depth() > params.CallCreateDepth {
		return e.finishCall(inputs, ExitCallTooDeep, gas, nil)
	}

	checkpoint := e.journal.CreateCheckpoint()

	// A zero-value call still touches the callee so EIP-158 state clearing
	// can erase it if it stays empty.
	if inputs.Transfer.Value.IsZero() {
		if _, err := e.journal.LoadAccount(inputs.Context.Address, e.db); err != nil {
			e.journal.CheckpointRevert(checkpoint)
			e.setFatal(err)
			return ExitFatalExternalError, gas, nil
		}
		e.journal.BalanceAdd(inputs.Context.Address, new(uint256.Int))
	}

	_, _, ok, err := e.journal.Transfer(inputs.Transfer.Source, inputs.Transfer.Target, &inputs.Transfer.Value, e.db)
	if err != nil {
		e.journal.CheckpointRevert(checkpoint)
		e.setFatal(err)
		return ExitFatalExternalError, gas, nil
	}
	if !ok {
		e.journal.CheckpointRevert(checkpoint)
		return e.finishCall(inputs, ExitOutOfFund, gas, nil)
	}

	if fn, isPrecompile := e.precompiles.Get(inputs.Contract); isPrecompile {
		out, err := fn(inputs.Input, inputs.GasLimit)
		if err != nil {
			e.journal.CheckpointRevert(checkpoint)
			if err == ErrPrecompileOutOfGas {
				gas.RecordCost(gas.Remaining())
				return e.finishCall(inputs, ExitOutOfGas, gas, nil)
			}
			return e.finishCall(inputs, ExitPrecompile, gas, nil)
		}
		if !gas.RecordCost(out.Cost) {
			e.journal.CheckpointRevert(checkpoint)
			return e.finishCall(inputs, ExitOutOfGas, gas, nil)
		}
		// Precompile logs are appended verbatim.
		for _, l := range out.Logs {
			e.journal.Log(l)
		}
		e.journal.CheckpointCommit(checkpoint)
		return e.finishCall(inputs, ExitContinue, gas, out.Output)
	}

	contract := NewContractWithContext(inputs.Input, code, inputs.Context)
	frame := e.interp.NewFrame(contract, inputs.GasLimit, e.journal.Depth(), inputs.IsStatic)
	if e.inspecting {
		e.inspector.InitializeInterp(frame, e, inputs.IsStatic)
	}
	exitReason := frame.Run(e)

	if e.dbErr != nil {
		e.journal.CheckpointRevert(checkpoint)
		return ExitFatalExternalError, frame.Gas(), nil
	}
	if exitReason.IsOK() {
		e.journal.CheckpointCommit(checkpoint)
	} else {
		e.journal.CheckpointRevert(checkpoint)
	}
	return e.finishCall(inputs, exitReason, frame.Gas(), frame.ReturnValue())
}

func (e *EVM) finishCall(inputs *CallInputs, ret ExitCode, gas *Gas, out []byte) (ExitCode, *Gas, []byte) {
	if e.inspecting {
		return e.inspector.CallPost(e, inputs, ret, gas, out, inputs.IsStatic)
	}
	return ret, gas, out
}

// createInner runs one creation frame: address derivation, collision check,
// endowment transfer, init-code execution, and the fork-gated output policy
// chain.
func (e *EVM) createInner(inputs *CreateInputs) (ExitCode, *types.Address, *Gas, []byte) {
	if e.inspecting {
		ret, addr, gasOverride, out := e.inspector.CreatePre(e, inputs)
		if ret != ExitContinue {
			if gasOverride == nil {
				gasOverride = NewGas(inputs.GasLimit)
			}
			return e.inspector.CreatePost(e, inputs, ret, addr, gasOverride, out)
		}
	}

	gas := NewGas(inputs.GasLimit)

	if _, err := e.journal.LoadAccount(inputs.Caller, e.db); err != nil {
		e.setFatal(err)
		return ExitFatalExternalError, nil, gas, nil
	}
	if e.journal.Depth() > params.CallCreateDepth {
		return e.finishCreate(inputs, ExitCallTooDeep, nil, gas, nil)
	}
	// Check the endowment before touching the nonce.
	if e.journal.Account(inputs.Caller).Info.Balance.Lt(&inputs.Value) {
		return e.finishCreate(inputs, ExitOutOfFund, nil, gas, nil)
	}

	oldNonce := e.journal.IncNonce(inputs.Caller)

	var created types.Address
	if inputs.Scheme == SchemeCreate2 {
		initCodeHash := crypto.Keccak256Hash(inputs.InitCode)
		created = Create2Address(inputs.Caller, initCodeHash, &inputs.Salt)
	} else {
		created = CreateAddress(inputs.Caller, oldNonce)
	}
	retAddr := &created

	// Load the created address so it is warm before the frame opens.
	if _, err := e.journal.LoadAccount(created, e.db); err != nil {
		e.setFatal(err)
		return ExitFatalExternalError, retAddr, gas, nil
	}

	checkpoint := e.journal.CreateCheckpoint()

	ok, err := e.journal.NewContractAcc(created, e.precompiles.Contains(created), e.db)
	if err != nil {
		e.journal.CheckpointRevert(checkpoint)
		e.setFatal(err)
		return ExitFatalExternalError, retAddr, gas, nil
	}
	if !ok {
		e.journal.CheckpointRevert(checkpoint)
		return e.finishCreate(inputs, ExitCreateCollision, retAddr, gas, nil)
	}

	_, _, ok, err = e.journal.Transfer(inputs.Caller, created, &inputs.Value, e.db)
	if err != nil {
		e.journal.CheckpointRevert(checkpoint)
		e.setFatal(err)
		return ExitFatalExternalError, retAddr, gas, nil
	}
	if !ok {
		e.journal.CheckpointRevert(checkpoint)
		return e.finishCreate(inputs, ExitOutOfFund, retAddr, gas, nil)
	}

	// Created contracts start executing at nonce 1.
	if e.spec.Enabled(params.Istanbul) {
		e.journal.IncNonce(created)
	}

	contract := NewContract(inputs.InitCode, created, inputs.Caller, inputs.Value)
	frame := e.interp.NewFrame(contract, gas.Limit(), e.journal.Depth(), false)
	if e.inspecting {
		e.inspector.InitializeInterp(frame, e, false)
	}
	exitReason := frame.Run(e)

	if e.dbErr != nil {
		e.journal.CheckpointRevert(checkpoint)
		return ExitFatalExternalError, retAddr, frame.Gas(), nil
	}

	if !exitReason.IsOK() {
		e.journal.CheckpointRevert(checkpoint)
		return e.finishCreate(inputs, exitReason, retAddr, frame.Gas(), frame.ReturnValue())
	}

	code := frame.ReturnValue()

	// EIP-3541: reject new code starting with the 0xEF byte.
	if e.spec.Enabled(params.London) && len(code) > 0 && code[0] == 0xEF {
		e.journal.CheckpointRevert(checkpoint)
		return e.finishCreate(inputs, ExitCreateContractWithEF, retAddr, frame.Gas(), nil)
	}

	// EIP-170: deployed code size limit, overridable by the inspector.
	sizeLimit := params.MaxCodeSize
	if e.inspecting {
		if o := e.inspector.OverrideSpec(); o != nil {
			sizeLimit = o.EIP170ContractCodeSizeLimit
		}
	}
	if e.spec.Enabled(params.SpuriousDragon) && len(code) > sizeLimit {
		e.journal.CheckpointRevert(checkpoint)
		return e.finishCreate(inputs, ExitCreateContractLimit, retAddr, frame.Gas(), nil)
	}

	if !frame.Gas().RecordCost(uint64(len(code)) * params.CreateDataGas) {
		e.journal.CheckpointRevert(checkpoint)
		return e.finishCreate(inputs, ExitOutOfGas, retAddr, frame.Gas(), nil)
	}

	e.journal.CheckpointCommit(checkpoint)
	e.journal.SetCode(created, code, crypto.Keccak256Hash(code))
	return e.finishCreate(inputs, ExitContinue, retAddr, frame.Gas(), nil)
}

func (e *EVM) finishCreate(inputs *CreateInputs, ret ExitCode, addr *types.Address, gas *Gas, out []byte) (ExitCode, *types.Address, *Gas, []byte) {
	if e.inspecting {
		return e.inspector.CreatePost(e, inputs, ret, addr, gas, out)
	}
	return ret, addr, gas, out
}

// --- Host facade ---

func (e *EVM) StepPre(frame Frame, isStatic bool) ExitCode {
	if e.inspecting {
		return e.inspector.StepPre(frame, e, isStatic)
	}
	return ExitContinue
}

func (e *EVM) StepPost(frame Frame, isStatic bool, ret ExitCode) ExitCode {
	if e.inspecting {
		return e.inspector.StepPost(frame, e, isStatic, ret)
	}
	return ret
}

func (e *EVM) Env() *Env {
	return e.env
}

func (e *EVM) BlockHash(number *uint256.Int) types.Hash {
	hash, err := e.db.BlockHash(number)
	if err != nil {
		e.setFatal(err)
		return types.Hash{}
	}
	return hash
}

func (e *EVM) LoadAccount(addr types.Address) (bool, bool) {
	cold, exists, err := e.journal.LoadAccountExist(addr, e.db)
	if err != nil {
		e.setFatal(err)
		return false, false
	}
	return cold, exists
}

func (e *EVM) Balance(addr types.Address) (uint256.Int, bool) {
	cold, err := e.journal.LoadAccount(addr, e.db)
	if err != nil {
		e.setFatal(err)
		return uint256.Int{}, false
	}
	return e.journal.Account(addr).Info.Balance, cold
}

func (e *EVM) Code(addr types.Address) ([]byte, bool) {
	acc, cold, err := e.journal.LoadCode(addr, e.db)
	if err != nil {
		e.setFatal(err)
		return nil, false
	}
	return acc.Info.Code, cold
}

// CodeHash follows EIP-1052 with one documented divergence: precompiles
// report KECCAK_EMPTY under the all-precompiles-have-balance optimisation
// instead of consulting the database.
func (e *EVM) CodeHash(addr types.Address) (types.Hash, bool) {
	acc, cold, err := e.journal.LoadCode(addr, e.db)
	if err != nil {
		e.setFatal(err)
		return types.Hash{}, false
	}
	if acc.IsPrecompile && e.env.Cfg.PerfAllPrecompilesHaveBalance {
		return types.KeccakEmpty, cold
	}
	if acc.NotExisting || acc.Info.IsEmpty() {
		return types.Hash{}, cold
	}
	return acc.Info.CodeHash, cold
}

func (e *EVM) SLoad(addr types.Address, slot *uint256.Int) (uint256.Int, bool) {
	value, cold, err := e.journal.SLoad(addr, slot, e.db)
	if err != nil {
		e.setFatal(err)
		return uint256.Int{}, false
	}
	return value, cold
}

func (e *EVM) SStore(addr types.Address, slot, value *uint256.Int) (uint256.Int, uint256.Int, uint256.Int, bool) {
	original, present, newValue, cold, err := e.journal.SStore(addr, slot, value, e.db)
	if err != nil {
		e.setFatal(err)
		return uint256.Int{}, uint256.Int{}, uint256.Int{}, false
	}
	return original, present, newValue, cold
}

// TLoad is the EIP-1153 placeholder: transient storage always reads zero.
func (e *EVM) TLoad(addr types.Address, slot *uint256.Int) uint256.Int {
	return uint256.Int{}
}

// TStore is the EIP-1153 placeholder: writes are dropped.
func (e *EVM) TStore(addr types.Address, slot, value *uint256.Int) {
}

func (e *EVM) Log(addr types.Address, topics []types.Hash, data []byte) {
	e.journal.Log(types.Log{Address: addr, Topics: topics, Data: data})
}

func (e *EVM) SelfDestruct(addr, target types.Address) state.SelfDestructResult {
	if e.inspecting {
		e.inspector.SelfDestruct()
	}
	result, err := e.journal.SelfDestruct(addr, target, e.db)
	if err != nil {
		e.setFatal(err)
		return state.SelfDestructResult{}
	}
	return result
}

func (e *EVM) Create(inputs *CreateInputs) (ExitCode, *types.Address, *Gas, []byte) {
	if e.dbErr != nil {
		return ExitFatalExternalError, nil, NewGas(inputs.GasLimit), nil
	}
	return e.createInner(inputs)
}

func (e *EVM) Call(inputs *CallInputs) (ExitCode, *Gas, []byte) {
	if e.dbErr != nil {
		return ExitFatalExternalError, NewGas(inputs.GasLimit), nil
	}
	return e.callInner(inputs)
}

var _ Host = (*EVM)(nil)
