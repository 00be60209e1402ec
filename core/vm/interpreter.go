package vm

// The bytecode interpreter is an external collaborator: the core constructs
// a frame for it, invokes Run, and consumes the exit code, return value, and
// remaining gas. Opcode dispatch, stack, and memory live behind this
// boundary.

// Frame is one interpreter invocation over a contract.
type Frame interface {
	// Run executes the frame to completion, re-entering the host for state
	// access and nested calls. There are no suspension points; Run returns
	// only when the frame is done.
	Run(host Host) ExitCode
	// ReturnValue returns the frame's output bytes: return data on
	// Return/Revert, deployed code for init frames.
	ReturnValue() []byte
	// Gas returns the frame's gas meter.
	Gas() *Gas
	// Contract returns the frame's code/input package.
	Contract() *Contract
}

// InterpreterFactory builds interpreter frames. Implementations decide the
// opcode semantics; the core only drives the lifecycle.
type InterpreterFactory interface {
	NewFrame(contract *Contract, gasLimit uint64, depth int, isStatic bool) Frame
}

// stopFrame is the built-in placeholder frame: it stops immediately without
// touching state or gas. It keeps the core runnable when no interpreter is
// plugged in, e.g. for pure transfer transactions and pipeline tests.
type stopFrame struct {
	contract *Contract
	gas      *Gas
}

func (f *stopFrame) Run(host Host) ExitCode { return ExitStop }
func (f *stopFrame) ReturnValue() []byte    { return nil }
func (f *stopFrame) Gas() *Gas              { return f.gas }
func (f *stopFrame) Contract() *Contract    { return f.contract }

// StopInterpreter is the default InterpreterFactory: every frame stops
// immediately.
type StopInterpreter struct{}

func (StopInterpreter) NewFrame(contract *Contract, gasLimit uint64, depth int, isStatic bool) Frame {
	return &stopFrame{contract: contract, gas: NewGas(gasLimit)}
}
