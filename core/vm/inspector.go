package vm

import "github.com/ethexec/ethexec/core/types"

// SpecOverride lets an inspector replace fork constants, e.g. so test
// suites can exercise non-default code size limits.
type SpecOverride struct {
	EIP170ContractCodeSizeLimit int
}

// Inspector observes and can short-circuit execution. Pre-hooks returning a
// non-Continue exit code skip the frame and surface the supplied gas and
// output instead. Inspector-originated early returns are not errors.
type Inspector interface {
	// InitializeInterp runs after a frame is built, before Run.
	InitializeInterp(frame Frame, evm *EVM, isStatic bool)

	// StepPre runs before each opcode; StepPost after.
	StepPre(frame Frame, evm *EVM, isStatic bool) ExitCode
	StepPost(frame Frame, evm *EVM, isStatic bool, ret ExitCode) ExitCode

	// CallPre runs before a call frame; a non-Continue return short-circuits
	// it. CallPost observes the finished frame and may rewrite its result.
	CallPre(evm *EVM, inputs *CallInputs, isStatic bool) (ExitCode, *Gas, []byte)
	CallPost(evm *EVM, inputs *CallInputs, ret ExitCode, gas *Gas, out []byte, isStatic bool) (ExitCode, *Gas, []byte)

	// CreatePre and CreatePost mirror CallPre/CallPost for creations.
	CreatePre(evm *EVM, inputs *CreateInputs) (ExitCode, *types.Address, *Gas, []byte)
	CreatePost(evm *EVM, inputs *CreateInputs, ret ExitCode, addr *types.Address, gas *Gas, out []byte) (ExitCode, *types.Address, *Gas, []byte)

	// SelfDestruct observes a selfdestruct intent.
	SelfDestruct()

	// OverrideSpec returns replacement fork constants, or nil.
	OverrideSpec() *SpecOverride
}

// NoOpInspector observes nothing and never short-circuits.
type NoOpInspector struct{}

func (NoOpInspector) InitializeInterp(frame Frame, evm *EVM, isStatic bool) {}

func (NoOpInspector) StepPre(frame Frame, evm *EVM, isStatic bool) ExitCode {
	return ExitContinue
}

func (NoOpInspector) StepPost(frame Frame, evm *EVM, isStatic bool, ret ExitCode) ExitCode {
	return ret
}

func (NoOpInspector) CallPre(evm *EVM, inputs *CallInputs, isStatic bool) (ExitCode, *Gas, []byte) {
	return ExitContinue, nil, nil
}

func (NoOpInspector) CallPost(evm *EVM, inputs *CallInputs, ret ExitCode, gas *Gas, out []byte, isStatic bool) (ExitCode, *Gas, []byte) {
	return ret, gas, out
}

func (NoOpInspector) CreatePre(evm *EVM, inputs *CreateInputs) (ExitCode, *types.Address, *Gas, []byte) {
	return ExitContinue, nil, nil, nil
}

func (NoOpInspector) CreatePost(evm *EVM, inputs *CreateInputs, ret ExitCode, addr *types.Address, gas *Gas, out []byte) (ExitCode, *types.Address, *Gas, []byte) {
	return ret, addr, gas, out
}

func (NoOpInspector) SelfDestruct() {}

func (NoOpInspector) OverrideSpec() *SpecOverride { return nil }

var _ Inspector = NoOpInspector{}
