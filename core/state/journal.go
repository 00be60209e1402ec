package state

import (
	"github.com/ethexec/ethexec/core/types"
	"github.com/holiman/uint256"
)

// journalEntry is a revertible state change. Replaying entries in reverse
// reconstructs the pre-change state exactly.
type journalEntry interface {
	revert(js *JournaledState)
}

// loadAccountChange records the first touch of an account within the
// transaction. Reverting it makes the account cold again.
type loadAccountChange struct {
	addr types.Address
}

func (ch loadAccountChange) revert(js *JournaledState) {
	delete(js.state, ch.addr)
}

// loadStorageChange records the first touch of a storage slot. Reverting it
// makes the slot cold again.
type loadStorageChange struct {
	addr types.Address
	slot uint256.Int
}

func (ch loadStorageChange) revert(js *JournaledState) {
	if acc, ok := js.state[ch.addr]; ok {
		delete(acc.Storage, ch.slot)
	}
}

type balanceChange struct {
	addr        types.Address
	prev        uint256.Int
	prevTouched bool
}

func (ch balanceChange) revert(js *JournaledState) {
	if acc, ok := js.state[ch.addr]; ok {
		acc.Info.Balance = ch.prev
		acc.Touched = ch.prevTouched
	}
}

// nonceChange undoes a single nonce increment.
type nonceChange struct {
	addr        types.Address
	prevTouched bool
}

func (ch nonceChange) revert(js *JournaledState) {
	if acc, ok := js.state[ch.addr]; ok {
		acc.Info.Nonce--
		acc.Touched = ch.prevTouched
	}
}

type storageChange struct {
	addr        types.Address
	slot        uint256.Int
	prevPresent uint256.Int
	prevTouched bool
}

func (ch storageChange) revert(js *JournaledState) {
	if acc, ok := js.state[ch.addr]; ok {
		if entry, ok := acc.Storage[ch.slot]; ok {
			entry.Present = ch.prevPresent
			acc.Storage[ch.slot] = entry
		}
		acc.Touched = ch.prevTouched
	}
}

type codeChange struct {
	addr        types.Address
	prevCode    []byte
	prevHash    types.Hash
	prevTouched bool
}

func (ch codeChange) revert(js *JournaledState) {
	if acc, ok := js.state[ch.addr]; ok {
		acc.Info.Code = ch.prevCode
		acc.Info.CodeHash = ch.prevHash
		acc.Touched = ch.prevTouched
	}
}

// createChange records the conversion of an address into a fresh contract
// account.
type createChange struct {
	addr            types.Address
	prevNew         bool
	prevNotExisting bool
	prevTouched     bool
}

func (ch createChange) revert(js *JournaledState) {
	if acc, ok := js.state[ch.addr]; ok {
		acc.IsNew = ch.prevNew
		acc.NotExisting = ch.prevNotExisting
		acc.Touched = ch.prevTouched
	}
}

// destroyChange records a selfdestruct: the destroyed flag and the balance
// drained to the beneficiary.
type destroyChange struct {
	addr          types.Address
	prevDestroyed bool
	prevBalance   uint256.Int
	prevTouched   bool
}

func (ch destroyChange) revert(js *JournaledState) {
	if acc, ok := js.state[ch.addr]; ok {
		acc.IsDestroyed = ch.prevDestroyed
		acc.Info.Balance = ch.prevBalance
		acc.Touched = ch.prevTouched
	}
}

// logChange pops the most recently appended log.
type logChange struct{}

func (ch logChange) revert(js *JournaledState) {
	js.logs = js.logs[:len(js.logs)-1]
}

type refundChange struct {
	prev int64
}

func (ch refundChange) revert(js *JournaledState) {
	js.refund = ch.prev
}
