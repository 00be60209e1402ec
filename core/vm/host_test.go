package vm

import (
	"testing"

	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/crypto"
	"github.com/ethexec/ethexec/params"
	"github.com/holiman/uint256"
)

func TestHostCodeHashSemantics(t *testing.T) {
	env := testEnv(params.Latest)
	env.Cfg.PerfAllPrecompilesHaveBalance = true
	identity := types.BytesToAddress([]byte{4})
	empty := types.HexToAddress("0x7777")

	var precompileHash, emptyHash, contractHash types.Hash
	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		precompileHash, _ = host.CodeHash(identity)
		emptyHash, _ = host.CodeHash(empty)
		contractHash, _ = host.CodeHash(callee)
		return ExitStop
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()
	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}

	// Precompiles report the empty-code hash under the optimisation flag.
	if precompileHash != types.KeccakEmpty {
		t.Fatalf("precompile code hash = %s, want KeccakEmpty", precompileHash)
	}
	// Empty accounts report the zero hash (EIP-1052).
	if !emptyHash.IsZero() {
		t.Fatalf("empty account code hash = %s, want zero", emptyHash)
	}
	if want := crypto.Keccak256Hash([]byte{0x60, 0x00}); contractHash != want {
		t.Fatalf("contract code hash = %s, want %s", contractHash, want)
	}
}

func TestHostTransientStoragePlaceholders(t *testing.T) {
	env := testEnv(params.Latest)
	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		host.TStore(callee, uint256.NewInt(1), uint256.NewInt(99))
		if got := host.TLoad(callee, uint256.NewInt(1)); !got.IsZero() {
			return ExitInvalidOpcode
		}
		return ExitStop
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()
	if result.ExitReason != ExitStop {
		t.Fatalf("transient storage placeholder returned data: %s", result.ExitReason)
	}
}

func TestHostBalanceAndColdness(t *testing.T) {
	env := testEnv(params.Latest)
	stranger := types.HexToAddress("0x4444")

	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		if _, cold := host.Balance(stranger); !cold {
			return ExitInvalidOpcode
		}
		if _, cold := host.Balance(stranger); cold {
			return ExitInvalidOpcode
		}
		if balance, _ := host.Balance(caller); balance.IsZero() {
			return ExitInvalidOpcode
		}
		return ExitStop
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()
	if result.ExitReason != ExitStop {
		t.Fatal("balance/coldness probes failed")
	}
}

func TestHostLogOrdering(t *testing.T) {
	env := testEnv(params.Latest)
	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		host.Log(callee, []types.Hash{types.HexToHash("0x01")}, []byte{1})
		host.Log(callee, nil, []byte{2})
		return ExitStop
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()
	if len(result.Logs) != 2 {
		t.Fatalf("log count = %d, want 2", len(result.Logs))
	}
	if result.Logs[0].Data[0] != 1 || result.Logs[1].Data[0] != 2 {
		t.Fatal("log order does not match emission order")
	}
	if len(result.Logs[0].Topics) != 1 {
		t.Fatalf("topic count = %d, want 1", len(result.Logs[0].Topics))
	}
}

func TestHostSelfDestruct(t *testing.T) {
	env := testEnv(params.Latest)
	heir := types.HexToAddress("0x5555")
	env.Tx.Value = *uint256.NewInt(250)

	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		result := host.SelfDestruct(callee, heir)
		if !result.HadValue {
			return ExitInvalidOpcode
		}
		return ExitSelfDestruct
	}}

	result, diff := New(env, testDB(), WithInterpreter(interp)).Transact()

	if result.ExitReason != ExitSelfDestruct {
		t.Fatalf("exit = %s, want SelfDestruct", result.ExitReason)
	}
	if !diff[callee].IsDestroyed {
		t.Fatal("destroyed contract missing from the diff")
	}
	heirBal := diff[heir].Info.Balance
	if heirBal.Uint64() != 250 {
		t.Fatalf("heir balance = %d, want 250", heirBal.Uint64())
	}
}

func TestHostBlockHash(t *testing.T) {
	env := testEnv(params.Latest)
	var first, second types.Hash
	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		first = host.BlockHash(uint256.NewInt(100))
		second = host.BlockHash(uint256.NewInt(100))
		return ExitStop
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()
	if !result.ExitReason.IsOK() {
		t.Fatalf("exit = %s, want ok", result.ExitReason)
	}
	if first.IsZero() || first != second {
		t.Fatalf("block hash unstable: %s vs %s", first, second)
	}
}

func TestHostLoadAccountExistence(t *testing.T) {
	env := testEnv(params.Latest)
	missing := types.HexToAddress("0x6666")

	interp := scriptedInterp{script: func(f *fakeFrame, host Host) ExitCode {
		if _, exists := host.LoadAccount(missing); exists {
			return ExitInvalidOpcode
		}
		if _, exists := host.LoadAccount(caller); !exists {
			return ExitInvalidOpcode
		}
		return ExitStop
	}}

	result, _ := New(env, testDB(), WithInterpreter(interp)).Transact()
	if result.ExitReason != ExitStop {
		t.Fatal("existence probes failed")
	}
}
