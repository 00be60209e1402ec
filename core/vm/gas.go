package vm

import (
	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/params"
)

// Gas meters one frame: a fixed limit and the amount still unspent.
type Gas struct {
	limit     uint64
	remaining uint64
}

// NewGas creates a meter with the given limit, all of it unspent.
func NewGas(limit uint64) *Gas {
	return &Gas{limit: limit, remaining: limit}
}

// Limit returns the frame's gas limit.
func (g *Gas) Limit() uint64 { return g.limit }

// Remaining returns the unspent gas.
func (g *Gas) Remaining() uint64 { return g.remaining }

// Spent returns the gas consumed so far.
func (g *Gas) Spent() uint64 { return g.limit - g.remaining }

// RecordCost consumes cost from the meter. It returns false, leaving the
// meter drained, when the cost exceeds the remaining gas.
func (g *Gas) RecordCost(cost uint64) bool {
	if g.remaining < cost {
		g.remaining = 0
		return false
	}
	g.remaining -= cost
	return true
}

// EraseCost returns gas to the meter, used when reimbursing a child frame's
// unspent gas.
func (g *Gas) EraseCost(amount uint64) {
	g.remaining += amount
}

// ReimburseUnspent credits a finished child frame's remaining gas back,
// but only when the frame ended in a success or an explicit revert; any
// other failure consumes everything the frame was given.
func (g *Gas) ReimburseUnspent(exit ExitCode, child *Gas) {
	if exit.IsOK() || exit.IsRevert() {
		g.EraseCost(child.Remaining())
	}
}

// IntrinsicGas computes the gas charged before execution starts: the base
// transaction cost, per-byte data costs, and Berlin+ access-list costs. It
// is a pure function of its inputs.
func IntrinsicGas(data []byte, accessList types.AccessList, isCreate bool, spec params.SpecID) uint64 {
	gas := params.TxGas
	if isCreate && spec.Enabled(params.Homestead) {
		gas = params.TxGasContractCreation
	}

	nonZeroGas := params.TxDataNonZeroGasFrontier
	if spec.Enabled(params.Istanbul) {
		nonZeroGas = params.TxDataNonZeroGasEIP2028
	}
	for _, b := range data {
		if b == 0 {
			gas += params.TxDataZeroGas
		} else {
			gas += nonZeroGas
		}
	}

	if spec.Enabled(params.Berlin) {
		gas += uint64(len(accessList)) * params.TxAccessListAddressGas
		gas += accessList.StorageKeyCount() * params.TxAccessListStorageKeyGas
	}
	return gas
}
