package vm

import (
	"errors"
	"testing"

	"github.com/ethexec/ethexec/core/state"
	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/params"
	"github.com/holiman/uint256"
)

func TestTransferTransaction(t *testing.T) {
	env := testEnv(params.Latest)
	env.Tx.Value = *uint256.NewInt(100)
	db := testDB()

	result, diff := New(env, db).Transact()

	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}
	if result.GasUsed != params.TxGas {
		t.Fatalf("gas used = %d, want %d", result.GasUsed, params.TxGas)
	}
	toBal := diff[callee].Info.Balance
	if toBal.Uint64() != 100 {
		t.Fatalf("callee balance = %d, want 100", toBal.Uint64())
	}
	fromBal := diff[caller].Info.Balance
	if fromBal.Uint64() != 1_000_000-100 {
		t.Fatalf("caller balance = %d, want %d", fromBal.Uint64(), 1_000_000-100)
	}
	if diff[caller].Info.Nonce != 1 {
		t.Fatalf("caller nonce = %d, want 1", diff[caller].Info.Nonce)
	}
	if _, ok := diff[coinbase]; !ok {
		t.Fatal("coinbase must be touched")
	}
	if len(result.Logs) != 0 {
		t.Fatalf("logs = %d, want 0", len(result.Logs))
	}
}

func TestIntrinsicGasPreflight(t *testing.T) {
	env := testEnv(params.Homestead)
	env.Tx.GasLimit = 20_999
	db := testDB()

	result, diff := New(env, db).Transact()

	if result.ExitReason != ExitOutOfGas {
		t.Fatalf("exit = %s, want OutOfGas", result.ExitReason)
	}
	if result.GasUsed != 0 {
		t.Fatalf("gas used = %d, want 0", result.GasUsed)
	}
	if len(diff) != 0 {
		t.Fatalf("preflight failure produced a state diff: %d entries", len(diff))
	}
}

func TestRejectCallerWithCode(t *testing.T) {
	env := testEnv(params.Latest)
	db := testDB()
	// Give the caller deployed code.
	info, err := db.Basic(caller)
	if err != nil {
		t.Fatalf("basic: %v", err)
	}
	info.Code = []byte{0x01}
	info.CodeHash = types.HexToHash("0x01")
	db.InsertAccountInfo(caller, *info)

	result, diff := New(env, db).Transact()

	if result.ExitReason != ExitRejectCallerWithCode {
		t.Fatalf("exit = %s, want RejectCallerWithCode", result.ExitReason)
	}
	if len(diff) != 0 {
		t.Fatal("rejected transaction must not debit anything")
	}
}

func TestCallerGasLimitMoreThanBlock(t *testing.T) {
	env := testEnv(params.Latest)
	env.Block.GasLimit = *uint256.NewInt(10_000)

	result, _ := New(env, testDB()).Transact()

	if result.ExitReason != ExitCallerGasLimitMoreThanBlock {
		t.Fatalf("exit = %s, want CallerGasLimitMoreThanBlock", result.ExitReason)
	}
}

func TestLondonFeePreflight(t *testing.T) {
	env := testEnv(params.London)
	env.Tx.GasPrice = *uint256.NewInt(10)
	priority := uint256.NewInt(20)
	env.Tx.GasPriorityFee = priority

	result, _ := New(env, testDB()).Transact()
	if result.ExitReason != ExitGasMaxFeeGreaterThanPriorityFee {
		t.Fatalf("exit = %s, want GasMaxFeeGreaterThanPriorityFee", result.ExitReason)
	}

	env = testEnv(params.London)
	env.Tx.GasPrice = *uint256.NewInt(5)
	env.Block.Basefee = *uint256.NewInt(10)

	result, _ = New(env, testDB()).Transact()
	if result.ExitReason != ExitGasPriceLessThanBasefee {
		t.Fatalf("exit = %s, want GasPriceLessThanBasefee", result.ExitReason)
	}
}

func TestLackOfFundForGasLimit(t *testing.T) {
	env := testEnv(params.Latest)
	env.Tx.GasPrice = *uint256.NewInt(10) // 10M total, caller holds 1M

	result, diff := New(env, testDB()).Transact()

	if result.ExitReason != ExitLackOfFundForGasLimit {
		t.Fatalf("exit = %s, want LackOfFundForGasLimit", result.ExitReason)
	}
	if len(diff) != 0 {
		t.Fatal("failed debit must leave no diff")
	}
}

func TestOutOfFundForValue(t *testing.T) {
	env := testEnv(params.Latest)
	env.Tx.Value = *uint256.NewInt(2_000_000)

	result, _ := New(env, testDB()).Transact()

	if result.ExitReason != ExitOutOfFund {
		t.Fatalf("exit = %s, want OutOfFund", result.ExitReason)
	}
}

func TestAccessListWarming(t *testing.T) {
	env := testEnv(params.Berlin)
	env.Tx.AccessList = types.AccessList{{
		Address:     callee,
		StorageKeys: []uint256.Int{*uint256.NewInt(1), *uint256.NewInt(2)},
	}}

	var colds []bool
	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		for _, key := range []uint64{1, 2} {
			_, cold := host.SLoad(callee, uint256.NewInt(key))
			colds = append(colds, cold)
		}
		return ExitStop
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()

	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}
	// 21000 + 2400 + 2*1900
	if want := uint64(27_200); result.GasUsed != want {
		t.Fatalf("gas used = %d, want %d", result.GasUsed, want)
	}
	for i, cold := range colds {
		if cold {
			t.Fatalf("slot %d: access-listed slot read cold", i+1)
		}
	}
}

func TestCreateRejectsEFCode(t *testing.T) {
	env := testEnv(params.London)
	env.Tx.TransactTo = Create()
	db := testDB()

	result, diff := New(env, db, WithInterpreter(returning(ExitReturn, []byte{0xEF, 0x01}))).Transact()

	if result.ExitReason != ExitCreateContractWithEF {
		t.Fatalf("exit = %s, want CreateContractWithEF", result.ExitReason)
	}
	// The nonce bump happens before the frame checkpoint, so it survives
	// the revert.
	if diff[caller].Info.Nonce != 1 {
		t.Fatalf("caller nonce = %d, want 1", diff[caller].Info.Nonce)
	}
	if result.Out.CreatedAddr == nil {
		t.Fatal("failed create must still report the derived address")
	}
	if _, ok := diff[*result.Out.CreatedAddr]; ok {
		t.Fatal("reverted create leaked the contract account into the diff")
	}
}

func TestCreateCodeSizeLimit(t *testing.T) {
	env := testEnv(params.SpuriousDragon)
	env.Tx.TransactTo = Create()

	big := make([]byte, params.MaxCodeSize+1)
	big[0] = 0x01
	result, _ := New(env, testDB(), WithInterpreter(returning(ExitReturn, big))).Transact()

	if result.ExitReason != ExitCreateContractLimit {
		t.Fatalf("exit = %s, want CreateContractLimit", result.ExitReason)
	}
}

func TestCreateSuccess(t *testing.T) {
	env := testEnv(params.Latest)
	env.Tx.TransactTo = Create()
	env.Tx.Value = *uint256.NewInt(10)
	code := []byte{0x60, 0x01, 0x60, 0x02}

	result, diff := New(env, testDB(), WithInterpreter(returning(ExitReturn, code))).Transact()

	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}
	want := CreateAddress(caller, 0)
	if result.Out.CreatedAddr == nil || *result.Out.CreatedAddr != want {
		t.Fatalf("created address = %v, want %s", result.Out.CreatedAddr, want)
	}
	created, ok := diff[want]
	if !ok {
		t.Fatal("created account missing from the diff")
	}
	if created.Info.Nonce != 1 {
		t.Fatalf("created nonce = %d, want 1", created.Info.Nonce)
	}
	if len(created.Info.Code) != len(code) {
		t.Fatalf("deployed code length = %d, want %d", len(created.Info.Code), len(code))
	}
	if !created.StorageCleared {
		t.Fatal("fresh contract must carry the storage-cleared flag")
	}
	bal := created.Info.Balance
	if bal.Uint64() != 10 {
		t.Fatalf("endowment = %d, want 10", bal.Uint64())
	}
	wantGas := params.TxGasContractCreation + uint64(len(code))*params.CreateDataGas
	if result.GasUsed != wantGas {
		t.Fatalf("gas used = %d, want %d", result.GasUsed, wantGas)
	}
}

func TestCreateCollision(t *testing.T) {
	env := testEnv(params.Latest)
	env.Tx.TransactTo = Create()
	db := testDB()

	occupied := CreateAddress(caller, 0)
	squatter := types.NewAccountInfo()
	squatter.Nonce = 1
	db.InsertAccountInfo(occupied, squatter)

	result, _ := New(env, db, WithInterpreter(returning(ExitReturn, []byte{0x01}))).Transact()

	if result.ExitReason != ExitCreateCollision {
		t.Fatalf("exit = %s, want CreateCollision", result.ExitReason)
	}
}

func TestCreateDepositOutOfGas(t *testing.T) {
	env := testEnv(params.Latest)
	env.Tx.TransactTo = Create()
	env.Tx.GasLimit = params.TxGasContractCreation + 100 // not enough for the deposit

	result, _ := New(env, testDB(), WithInterpreter(returning(ExitReturn, []byte{0x01}))).Transact()

	if result.ExitReason != ExitOutOfGas {
		t.Fatalf("exit = %s, want OutOfGas", result.ExitReason)
	}
}

func TestPrecompileBalanceReconciliation(t *testing.T) {
	identity := types.BytesToAddress([]byte{4})
	env := testEnv(params.Latest)
	env.Cfg.PerfAllPrecompilesHaveBalance = true
	env.Tx.TransactTo = Call(identity)
	env.Tx.Value = *uint256.NewInt(100)

	db := testDB()
	funded := types.NewAccountInfo()
	funded.Balance = *uint256.NewInt(500)
	db.InsertAccountInfo(identity, funded)

	result, diff := New(env, db).Transact()

	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}
	got := diff[identity].Info.Balance
	if got.Uint64() != 600 {
		t.Fatalf("precompile balance = %d, want db balance 500 + transfer 100", got.Uint64())
	}
}

func TestPrecompileIdentityOutput(t *testing.T) {
	identity := types.BytesToAddress([]byte{4})
	env := testEnv(params.Latest)
	env.Tx.TransactTo = Call(identity)
	env.Tx.Data = []byte{1, 2, 3}

	result, _ := New(env, testDB()).Transact()

	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}
	if string(result.Out.Data) != string([]byte{1, 2, 3}) {
		t.Fatalf("output = %x, want input echoed", result.Out.Data)
	}
	intrinsic := IntrinsicGas(env.Tx.Data, nil, false, params.Latest)
	wantGas := intrinsic + params.IdentityBaseGas + params.IdentityPerWordGas
	if result.GasUsed != wantGas {
		t.Fatalf("gas used = %d, want %d", result.GasUsed, wantGas)
	}
}

func TestPrecompileOutOfGas(t *testing.T) {
	sha := types.BytesToAddress([]byte{2})
	env := testEnv(params.Latest)
	env.Tx.TransactTo = Call(sha)
	env.Tx.GasLimit = params.TxGas + 10 // 10 gas for a 60-gas precompile

	result, _ := New(env, testDB()).Transact()

	if result.ExitReason != ExitOutOfGas {
		t.Fatalf("exit = %s, want OutOfGas", result.ExitReason)
	}
	if result.GasUsed != env.Tx.GasLimit {
		t.Fatalf("gas used = %d, want the whole limit %d", result.GasUsed, env.Tx.GasLimit)
	}
}

func TestCallDepthLimit(t *testing.T) {
	env := testEnv(params.Latest)

	var maxDepth int
	sawTooDeep := false
	var interp scriptedInterp
	interp.script = func(f *fakeFrame, host Host) ExitCode {
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		ret, _, _ := host.Call(&CallInputs{
			Contract: callee,
			Transfer: Transfer{Source: callee, Target: callee},
			GasLimit: 1000,
			Context:  CallContext{Caller: callee, Address: callee},
		})
		if ret == ExitCallTooDeep {
			sawTooDeep = true
		}
		return ExitStop
	}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()

	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}
	if !sawTooDeep {
		t.Fatal("nesting never hit the depth limit")
	}
	if maxDepth != params.CallCreateDepth+1 {
		t.Fatalf("deepest frame = %d, want %d", maxDepth, params.CallCreateDepth+1)
	}
}

func TestRefundCap(t *testing.T) {
	cases := []struct {
		name     string
		spec     params.SpecID
		quotient uint64
	}{
		{"berlin", params.Berlin, params.RefundQuotient},
		{"london", params.London, params.RefundQuotientEIP3529},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := testEnv(tc.spec)
			interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
				// Clear a non-zero slot to earn a refund.
				host.SStore(callee, uint256.NewInt(1), new(uint256.Int))
				return ExitStop
			}}

			result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()

			if !result.ExitReason.IsOK() {
				t.Fatalf("exit = %s, want ok", result.ExitReason)
			}
			spent := result.GasUsed + result.GasRefunded
			if maxRefund := spent / tc.quotient; result.GasRefunded != maxRefund {
				t.Fatalf("refund = %d, want capped at %d", result.GasRefunded, maxRefund)
			}
			if result.GasUsed < spent-spent/tc.quotient {
				t.Fatalf("gas used %d violates the refund cap for quotient %d", result.GasUsed, tc.quotient)
			}
		})
	}
}

func TestRevertReturnsOutputAndGas(t *testing.T) {
	env := testEnv(params.Latest)
	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		// Mutate state, burn a little gas, then revert.
		host.SStore(callee, uint256.NewInt(1), uint256.NewInt(7))
		f.gas.RecordCost(5000)
		f.ret = []byte("reverted")
		return ExitRevert
	}}

	result, diff := New(env, testDB(), WithInterpreter(interp)).Transact()

	if result.ExitReason != ExitRevert {
		t.Fatalf("exit = %s, want Revert", result.ExitReason)
	}
	if string(result.Out.Data) != "reverted" {
		t.Fatalf("output = %q, want revert payload", result.Out.Data)
	}
	// Remaining frame gas comes back on revert.
	if want := params.TxGas + 5000; result.GasUsed != want {
		t.Fatalf("gas used = %d, want %d", result.GasUsed, want)
	}
	if _, ok := diff[callee]; ok {
		t.Fatal("reverted storage write leaked into the diff")
	}
}

func TestInterpreterErrorConsumesFrameGas(t *testing.T) {
	env := testEnv(params.Latest)
	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		return ExitInvalidOpcode
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()

	if result.ExitReason != ExitInvalidOpcode {
		t.Fatalf("exit = %s, want InvalidOpcode", result.ExitReason)
	}
	if result.GasUsed != env.Tx.GasLimit {
		t.Fatalf("gas used = %d, want the whole limit", result.GasUsed)
	}
}

// selectiveDB fails reads for one address.
type selectiveDB struct {
	inner state.Database
	bad   types.Address
}

var errBroken = errors.New("backend broke")

func (db *selectiveDB) Basic(addr types.Address) (*types.AccountInfo, error) {
	if addr == db.bad {
		return nil, errBroken
	}
	return db.inner.Basic(addr)
}

func (db *selectiveDB) CodeByHash(hash types.Hash) ([]byte, error) {
	return db.inner.CodeByHash(hash)
}

func (db *selectiveDB) Storage(addr types.Address, slot *uint256.Int) (uint256.Int, error) {
	return db.inner.Storage(addr, slot)
}

func (db *selectiveDB) BlockHash(number *uint256.Int) (types.Hash, error) {
	return db.inner.BlockHash(number)
}

func TestFatalDatabaseError(t *testing.T) {
	env := testEnv(params.Latest)
	db := &selectiveDB{inner: testDB(), bad: callee}

	result, diff := New(env, db).Transact()

	if result.ExitReason != ExitFatalExternalError {
		t.Fatalf("exit = %s, want FatalExternalError", result.ExitReason)
	}
	if result.GasUsed != env.Tx.GasLimit {
		t.Fatalf("gas used = %d, want the whole limit (no reimbursement)", result.GasUsed)
	}
	if len(diff) != 0 {
		t.Fatal("fatal error must unwind the whole transaction")
	}
}
