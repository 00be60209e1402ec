package vm

// Shared fixtures: a scripted interpreter standing in for the external
// bytecode interpreter, and canned environments/databases.

import (
	"github.com/ethexec/ethexec/core/state"
	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/crypto"
	"github.com/ethexec/ethexec/params"
	"github.com/holiman/uint256"
)

// frameScript drives one fake frame; it can re-enter the host and set the
// frame's return value.
type frameScript func(f *fakeFrame, host Host) ExitCode

type fakeFrame struct {
	contract *Contract
	gas      *Gas
	depth    int
	isStatic bool
	script   frameScript
	ret      []byte
}

func (f *fakeFrame) Run(host Host) ExitCode { return f.script(f, host) }
func (f *fakeFrame) ReturnValue() []byte    { return f.ret }
func (f *fakeFrame) Gas() *Gas              { return f.gas }
func (f *fakeFrame) Contract() *Contract    { return f.contract }

// scriptedInterp builds frames that run the given script.
type scriptedInterp struct {
	script frameScript
}

func (s scriptedInterp) NewFrame(contract *Contract, gasLimit uint64, depth int, isStatic bool) Frame {
	return &fakeFrame{
		contract: contract,
		gas:      NewGas(gasLimit),
		depth:    depth,
		isStatic: isStatic,
		script:   s.script,
	}
}

// returning builds an interpreter whose frames succeed immediately with the
// given output.
func returning(exit ExitCode, ret []byte) InterpreterFactory {
	return scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		f.ret = ret
		return exit
	}}
}

var (
	caller   = types.HexToAddress("0x1000")
	callee   = types.HexToAddress("0x2000")
	coinbase = types.HexToAddress("0x3000")
)

// testEnv returns an environment for a call to callee with generous limits
// and a zero gas price.
func testEnv(spec params.SpecID) *Env {
	env := &Env{}
	env.Cfg.SpecID = spec
	env.Block.Coinbase = coinbase
	env.Block.GasLimit = *uint256.NewInt(30_000_000)
	env.Tx.Caller = caller
	env.Tx.GasLimit = 1_000_000
	env.Tx.TransactTo = Call(callee)
	return env
}

// testDB seeds a world state with a funded caller and a callee contract
// holding slot 1 = 42.
func testDB() *state.CacheDB {
	db := state.NewInMemoryDB()

	rich := types.NewAccountInfo()
	rich.Balance = *uint256.NewInt(1_000_000)
	db.InsertAccountInfo(caller, rich)

	code := []byte{0x60, 0x00}
	contract := types.NewAccountInfo()
	contract.Code = code
	contract.CodeHash = crypto.Keccak256Hash(code)
	contract.Nonce = 1
	db.InsertAccountInfo(callee, contract)
	if err := db.InsertAccountStorage(callee, uint256.NewInt(1), uint256.NewInt(42)); err != nil {
		panic(err)
	}
	return db
}
