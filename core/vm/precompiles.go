package vm

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/params"
	"golang.org/x/crypto/ripemd160"
)

// ErrPrecompileOutOfGas reports that the supplied gas limit does not cover
// the precompile's cost. The call handler maps it to an OutOfGas exit.
var ErrPrecompileOutOfGas = errors.New("precompile: out of gas")

// PrecompileOutput is a successful precompile run: the output bytes, the gas
// cost to charge, and any logs to append verbatim.
type PrecompileOutput struct {
	Output []byte
	Cost   uint64
	Logs   []types.Log
}

// PrecompileFn executes a precompiled contract against the given input
// under the given gas limit.
type PrecompileFn func(input []byte, gasLimit uint64) (*PrecompileOutput, error)

// Precompiles is the registry of precompiled contracts active under one
// hard fork.
type Precompiles struct {
	inner map[types.Address]PrecompileFn
}

// precompileAddr returns the low-numbered address of the n-th precompile.
func precompileAddr(n byte) types.Address {
	return types.BytesToAddress([]byte{n})
}

// NewPrecompiles returns the registry for the given fork: four contracts
// through Homestead, eight from Byzantium, nine from Istanbul. The hashing
// and identity contracts are provided natively; the heavy cryptographic
// ones (ecrecover, modexp, the bn254 ops, blake2f) ship as placeholders and
// are expected to be installed by the embedder via Register.
func NewPrecompiles(spec params.SpecID) *Precompiles {
	count := byte(4)
	if spec.Enabled(params.Byzantium) {
		count = 8
	}
	if spec.Enabled(params.Istanbul) {
		count = 9
	}
	p := &Precompiles{inner: make(map[types.Address]PrecompileFn, count)}
	for n := byte(1); n <= count; n++ {
		p.inner[precompileAddr(n)] = notImplemented(n)
	}
	p.inner[precompileAddr(2)] = sha256Run
	p.inner[precompileAddr(3)] = ripemd160Run
	p.inner[precompileAddr(4)] = identityRun
	return p
}

// Register installs or replaces the contract at addr.
func (p *Precompiles) Register(addr types.Address, fn PrecompileFn) {
	p.inner[addr] = fn
}

// Get returns the contract at addr, if any.
func (p *Precompiles) Get(addr types.Address) (PrecompileFn, bool) {
	fn, ok := p.inner[addr]
	return fn, ok
}

// Contains reports whether addr is a precompile under this registry.
func (p *Precompiles) Contains(addr types.Address) bool {
	_, ok := p.inner[addr]
	return ok
}

// Addresses returns the registry's addresses in ascending order.
func (p *Precompiles) Addresses() []types.Address {
	addrs := make([]types.Address, 0, len(p.inner))
	for addr := range p.inner {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Hex() < addrs[j].Hex()
	})
	return addrs
}

func notImplemented(n byte) PrecompileFn {
	return func(input []byte, gasLimit uint64) (*PrecompileOutput, error) {
		return nil, fmt.Errorf("precompile 0x%02x: not installed", n)
	}
}

// wordCount returns the number of 32-byte words covering n bytes.
func wordCount(n int) uint64 {
	return (uint64(n) + 31) / 32
}

func sha256Run(input []byte, gasLimit uint64) (*PrecompileOutput, error) {
	cost := params.Sha256BaseGas + wordCount(len(input))*params.Sha256PerWordGas
	if gasLimit < cost {
		return nil, ErrPrecompileOutOfGas
	}
	sum := sha256.Sum256(input)
	return &PrecompileOutput{Output: sum[:], Cost: cost}, nil
}

func ripemd160Run(input []byte, gasLimit uint64) (*PrecompileOutput, error) {
	cost := params.Ripemd160BaseGas + wordCount(len(input))*params.Ripemd160PerWordGas
	if gasLimit < cost {
		return nil, ErrPrecompileOutOfGas
	}
	h := ripemd160.New()
	h.Write(input)
	// Left-pad the 20-byte digest to a 32-byte word.
	return &PrecompileOutput{Output: types.BytesToHash(h.Sum(nil)).Bytes(), Cost: cost}, nil
}

func identityRun(input []byte, gasLimit uint64) (*PrecompileOutput, error) {
	cost := params.IdentityBaseGas + wordCount(len(input))*params.IdentityPerWordGas
	if gasLimit < cost {
		return nil, ErrPrecompileOutOfGas
	}
	out := make([]byte, len(input))
	copy(out, input)
	return &PrecompileOutput{Output: out, Cost: cost}, nil
}
