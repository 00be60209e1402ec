package vm

import (
	"github.com/ethexec/ethexec/core/types"
	"github.com/holiman/uint256"
)

// CallContext describes the execution context of a frame: who is calling,
// which address the code runs as, and the value CALLVALUE reports (the
// apparent value, which differs from the transferred value under
// DELEGATECALL).
type CallContext struct {
	Caller        types.Address
	Address       types.Address
	ApparentValue uint256.Int
}

// Transfer is a balance movement attached to a call.
type Transfer struct {
	Source types.Address
	Target types.Address
	Value  uint256.Int
}

// CallInputs carries everything the call handler needs for one frame.
type CallInputs struct {
	Contract types.Address
	Transfer Transfer
	Input    []byte
	GasLimit uint64
	Context  CallContext
	IsStatic bool
}

// CreateInputs carries everything the create handler needs for one frame.
type CreateInputs struct {
	Caller   types.Address
	Scheme   CreateScheme
	Salt     uint256.Int
	Value    uint256.Int
	InitCode []byte
	GasLimit uint64
}

// Contract is the code/input package handed to an interpreter frame.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address
	ApparentValue uint256.Int
	Code          []byte
	CodeHash      types.Hash
	Input         []byte
}

// NewContract builds a creation frame: the init code runs at the created
// address with empty input.
func NewContract(code []byte, address, caller types.Address, value uint256.Int) *Contract {
	return &Contract{
		CallerAddress: caller,
		Address:       address,
		ApparentValue: value,
		Code:          code,
	}
}

// NewContractWithContext builds a call frame from its context.
func NewContractWithContext(input, code []byte, ctx CallContext) *Contract {
	return &Contract{
		CallerAddress: ctx.Caller,
		Address:       ctx.Address,
		ApparentValue: ctx.ApparentValue,
		Code:          code,
		Input:         input,
	}
}
