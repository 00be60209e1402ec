package vm

import (
	"github.com/ethexec/ethexec/core/state"
	"github.com/ethexec/ethexec/core/types"
	"github.com/holiman/uint256"
)

// Host is the narrow surface the interpreter calls back into. It is one
// flat capability set so the opcode loop pays a single indirection.
//
// Database failures inside host methods are latched by the implementation
// and surface as a FatalExternalError transaction result; the affected
// method returns zero values in the meantime.
type Host interface {
	// StepPre and StepPost bracket each opcode when an inspector is
	// attached. A non-Continue return aborts the frame with that code.
	StepPre(frame Frame, isStatic bool) ExitCode
	StepPost(frame Frame, isStatic bool, ret ExitCode) ExitCode

	// Env exposes the transaction environment.
	Env() *Env

	// BlockHash returns the hash of a historical block.
	BlockHash(number *uint256.Int) types.Hash

	// LoadAccount warms an account, reporting (cold, exists).
	LoadAccount(addr types.Address) (bool, bool)

	// Balance returns an account's balance and whether the access was cold.
	Balance(addr types.Address) (uint256.Int, bool)

	// Code returns an account's code and whether the access was cold.
	Code(addr types.Address) ([]byte, bool)

	// CodeHash returns an account's code hash per EIP-1052 semantics, and
	// whether the access was cold.
	CodeHash(addr types.Address) (types.Hash, bool)

	// SLoad reads a storage slot, reporting whether the slot was cold.
	SLoad(addr types.Address, slot *uint256.Int) (uint256.Int, bool)

	// SStore writes a storage slot, returning (original, previous present,
	// new, cold).
	SStore(addr types.Address, slot, value *uint256.Int) (uint256.Int, uint256.Int, uint256.Int, bool)

	// TLoad and TStore are transient-storage placeholders reserved for
	// EIP-1153: TLoad returns zero, TStore is a no-op.
	TLoad(addr types.Address, slot *uint256.Int) uint256.Int
	TStore(addr types.Address, slot, value *uint256.Int)

	// Log appends a log owned by addr.
	Log(addr types.Address, topics []types.Hash, data []byte)

	// SelfDestruct schedules addr for destruction, crediting target.
	SelfDestruct(addr, target types.Address) state.SelfDestructResult

	// Create runs a nested creation frame.
	Create(inputs *CreateInputs) (ExitCode, *types.Address, *Gas, []byte)

	// Call runs a nested call frame.
	Call(inputs *CallInputs) (ExitCode, *Gas, []byte)
}
