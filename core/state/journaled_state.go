package state

import (
	"fmt"

	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/crypto"
	"github.com/ethexec/ethexec/params"
	"github.com/holiman/uint256"
)

// StorageSlot is the journaled view of one storage slot. Original is the
// value at the start of the transaction (EIP-2200 refund accounting);
// Present is the current in-journal value. A slot is warm from the moment it
// enters the map until a checkpoint rollback removes it.
type StorageSlot struct {
	Original uint256.Int
	Present  uint256.Int
}

// JournalAccount is the transactional overlay of one account. An account is
// warm exactly while it is present in the journal's state map.
type JournalAccount struct {
	Info    types.AccountInfo
	Storage map[uint256.Int]StorageSlot

	// NotExisting marks an address the backing store has no account for
	// (pre-Spurious-Dragon existence semantics).
	NotExisting bool
	// IsPrecompile marks accounts pre-loaded from the precompile registry.
	IsPrecompile bool
	// IsNew marks contract accounts created within this transaction; their
	// storage reads miss to zero without consulting the database.
	IsNew bool
	// IsDestroyed marks accounts scheduled for removal at finalize.
	IsDestroyed bool
	// Touched marks accounts whose state was modified; only touched
	// accounts appear in the finalised diff.
	Touched bool
}

// Account is one entry of the finalised state diff.
type Account struct {
	Info           types.AccountInfo
	Storage        map[uint256.Int]StorageSlot
	StorageCleared bool
	IsDestroyed    bool
}

// SelfDestructResult reports the outcome of a selfdestruct intent.
type SelfDestructResult struct {
	HadValue            bool
	TargetCold          bool
	PreviouslyDestroyed bool
	TargetExists        bool
}

// Checkpoint is an opaque rollback handle: everything journaled after it can
// be undone atomically.
type Checkpoint struct {
	journalLen int
	logLen     int
	refund     int64
}

// JournaledState is the transaction-scoped mutable state: an in-memory
// overlay over a Database whose nested checkpoints are atomically
// committable or revertible. It tracks warm/cold access, newly created and
// destroyed accounts, storage originals for refund accounting, and the
// transaction log.
type JournaledState struct {
	state   map[types.Address]*JournalAccount
	logs    []types.Log
	journal []journalEntry
	refund  int64
	depth   int
	spec    params.SpecID
}

// NewJournaledState creates an empty journal for one transaction under the
// given hard fork.
func NewJournaledState(spec params.SpecID) *JournaledState {
	return &JournaledState{
		state: make(map[types.Address]*JournalAccount),
		spec:  spec,
	}
}

// Depth returns the current checkpoint nesting depth.
func (js *JournaledState) Depth() int {
	return js.depth
}

// Refund returns the current value of the refund counter, clamped at zero.
func (js *JournaledState) Refund() uint64 {
	if js.refund < 0 {
		return 0
	}
	return uint64(js.refund)
}

// Logs returns the logs appended so far and not rolled back.
func (js *JournaledState) Logs() []types.Log {
	return js.logs
}

// LoadPrecompilesDefault pre-loads the given precompile addresses as warm
// empty accounts without consulting the database. Used under the
// all-precompiles-have-balance optimisation; their backing balances are
// reconciled at finalisation.
func (js *JournaledState) LoadPrecompilesDefault(addrs []types.Address) {
	for _, addr := range addrs {
		js.state[addr] = &JournalAccount{
			Info:         types.NewAccountInfo(),
			Storage:      make(map[uint256.Int]StorageSlot),
			IsPrecompile: true,
		}
	}
}

// LoadPrecompiles pre-loads precompile accounts with their database-reported
// info.
func (js *JournaledState) LoadPrecompiles(accounts map[types.Address]types.AccountInfo) {
	for addr, info := range accounts {
		js.state[addr] = &JournalAccount{
			Info:         info.Copy(),
			Storage:      make(map[uint256.Int]StorageSlot),
			IsPrecompile: true,
		}
	}
}

// LoadAccount brings addr into the journal, fetching it from db on first
// touch. It reports whether the access was cold. Idempotent within a
// transaction.
func (js *JournaledState) LoadAccount(addr types.Address, db Database) (bool, error) {
	if _, ok := js.state[addr]; ok {
		return false, nil
	}
	info, err := db.Basic(addr)
	if err != nil {
		return false, err
	}
	acc := &JournalAccount{Storage: make(map[uint256.Int]StorageSlot)}
	if info == nil {
		acc.Info = types.NewAccountInfo()
		acc.NotExisting = true
	} else {
		acc.Info = info.Copy()
	}
	js.state[addr] = acc
	js.journal = append(js.journal, loadAccountChange{addr: addr})
	return true, nil
}

// LoadAccountExist additionally reports whether the account exists. From
// Spurious Dragon on, empty accounts (zero balance, nonce and code) count as
// non-existing per EIP-161; before that only the backing-store marker
// decides.
func (js *JournaledState) LoadAccountExist(addr types.Address, db Database) (cold, exists bool, err error) {
	cold, err = js.LoadAccount(addr, db)
	if err != nil {
		return false, false, err
	}
	acc := js.state[addr]
	if js.spec.Enabled(params.SpuriousDragon) {
		exists = !acc.NotExisting && !acc.Info.IsEmpty()
	} else {
		exists = !acc.NotExisting
	}
	return cold, exists, nil
}

// LoadCode loads the account and forces its code field to be materialised,
// not just the hash.
func (js *JournaledState) LoadCode(addr types.Address, db Database) (*JournalAccount, bool, error) {
	cold, err := js.LoadAccount(addr, db)
	if err != nil {
		return nil, false, err
	}
	acc := js.state[addr]
	if acc.Info.Code == nil {
		if acc.Info.CodeHash == types.KeccakEmpty || acc.Info.CodeHash.IsZero() {
			acc.Info.Code = []byte{}
		} else {
			code, err := db.CodeByHash(acc.Info.CodeHash)
			if err != nil {
				return nil, false, err
			}
			acc.Info.Code = code
		}
	}
	return acc, cold, nil
}

// Account returns the journaled view of an already-loaded account. Callers
// must load the account first.
func (js *JournaledState) Account(addr types.Address) *JournalAccount {
	acc, ok := js.state[addr]
	if !ok {
		panic(fmt.Sprintf("state: account %s accessed before load", addr))
	}
	return acc
}

// BalanceAdd credits amount to addr. It returns false on balance overflow,
// in which case no journal entry is written. A zero-value add still touches
// the account (EIP-158 state clearing relies on this).
func (js *JournaledState) BalanceAdd(addr types.Address, amount *uint256.Int) bool {
	acc := js.Account(addr)
	sum, overflow := new(uint256.Int).AddOverflow(&acc.Info.Balance, amount)
	if overflow {
		return false
	}
	js.journal = append(js.journal, balanceChange{addr: addr, prev: acc.Info.Balance, prevTouched: acc.Touched})
	acc.Info.Balance = *sum
	acc.Touched = true
	return true
}

// BalanceSub debits amount from addr. It returns false if the balance is
// insufficient, in which case no journal entry is written.
func (js *JournaledState) BalanceSub(addr types.Address, amount *uint256.Int) bool {
	acc := js.Account(addr)
	if acc.Info.Balance.Lt(amount) {
		return false
	}
	js.journal = append(js.journal, balanceChange{addr: addr, prev: acc.Info.Balance, prevTouched: acc.Touched})
	acc.Info.Balance.Sub(&acc.Info.Balance, amount)
	acc.Touched = true
	return true
}

// IncNonce increments addr's nonce and returns the value before the
// increment.
func (js *JournaledState) IncNonce(addr types.Address) uint64 {
	acc := js.Account(addr)
	js.journal = append(js.journal, nonceChange{addr: addr, prevTouched: acc.Touched})
	old := acc.Info.Nonce
	acc.Info.Nonce++
	acc.Touched = true
	return old
}

// Transfer moves value from one account to the other, loading both. It
// returns ok=false when the source balance is insufficient or the target
// balance would overflow; in that case no mutation happens.
func (js *JournaledState) Transfer(from, to types.Address, value *uint256.Int, db Database) (fromCold, toCold, ok bool, err error) {
	fromCold, err = js.LoadAccount(from, db)
	if err != nil {
		return false, false, false, err
	}
	toCold, err = js.LoadAccount(to, db)
	if err != nil {
		return false, false, false, err
	}
	fromAcc := js.state[from]
	if fromAcc.Info.Balance.Lt(value) {
		return fromCold, toCold, false, nil
	}
	if _, overflow := new(uint256.Int).AddOverflow(&js.state[to].Info.Balance, value); overflow {
		return fromCold, toCold, false, nil
	}
	js.BalanceSub(from, value)
	js.BalanceAdd(to, value)
	return fromCold, toCold, true, nil
}

// loadSlot brings a storage slot into the journal, setting its original
// value. The owning account must already be loaded. Accounts that are newly
// created, destroyed, or known not to exist resolve misses to zero without
// querying the database.
func (js *JournaledState) loadSlot(addr types.Address, slot *uint256.Int, db Database) (*StorageSlot, bool, error) {
	acc := js.Account(addr)
	if entry, ok := acc.Storage[*slot]; ok {
		return &entry, false, nil
	}
	var value uint256.Int
	if !(acc.IsNew || acc.IsDestroyed || acc.NotExisting) {
		var err error
		value, err = db.Storage(addr, slot)
		if err != nil {
			return nil, false, err
		}
	}
	entry := StorageSlot{Original: value, Present: value}
	acc.Storage[*slot] = entry
	js.journal = append(js.journal, loadStorageChange{addr: addr, slot: *slot})
	return &entry, true, nil
}

// SLoad reads a storage slot, reporting whether the access was cold. The
// account must already be loaded (EIP-2929: the executing account is always
// warm).
func (js *JournaledState) SLoad(addr types.Address, slot *uint256.Int, db Database) (uint256.Int, bool, error) {
	entry, cold, err := js.loadSlot(addr, slot, db)
	if err != nil {
		return uint256.Int{}, false, err
	}
	return entry.Present, cold, nil
}

// SStore writes a storage slot and returns (original, previous present, new,
// cold). The refund counter is adjusted per the active fork's SSTORE refund
// schedule.
func (js *JournaledState) SStore(addr types.Address, slot, value *uint256.Int, db Database) (original, present, newValue uint256.Int, cold bool, err error) {
	entry, cold, err := js.loadSlot(addr, slot, db)
	if err != nil {
		return uint256.Int{}, uint256.Int{}, uint256.Int{}, false, err
	}
	original, present, newValue = entry.Original, entry.Present, *value
	if present.Eq(value) {
		return original, present, newValue, cold, nil
	}
	acc := js.Account(addr)
	js.journal = append(js.journal, storageChange{addr: addr, slot: *slot, prevPresent: present, prevTouched: acc.Touched})
	stored := acc.Storage[*slot]
	stored.Present = *value
	acc.Storage[*slot] = stored
	acc.Touched = true
	js.sstoreRefund(&original, &present, value)
	return original, present, newValue, cold, nil
}

// sstoreRefund applies the fork-gated SSTORE refund schedule: the legacy
// clear refund before Istanbul, EIP-2200 net metering from Istanbul, with
// EIP-2929 warm-read constants from Berlin and the EIP-3529 clear refund
// from London.
func (js *JournaledState) sstoreRefund(original, present, value *uint256.Int) {
	if !js.spec.Enabled(params.Istanbul) {
		if !present.IsZero() && value.IsZero() {
			js.refundAdd(int64(params.SstoreRefundGas))
		}
		return
	}

	clearRefund := params.SstoreClearsScheduleRefundEIP2200
	if js.spec.Enabled(params.London) {
		clearRefund = params.SstoreClearsScheduleRefundEIP3529
	}
	sloadGas := params.SloadGasEIP2200
	resetGas := params.SstoreResetGasEIP2200
	if js.spec.Enabled(params.Berlin) {
		sloadGas = params.WarmStorageReadCostEIP2929
		resetGas = params.SstoreResetGasEIP2200 - params.ColdSloadCostEIP2929
	}

	if original.Eq(present) {
		// Clean slot.
		if !original.IsZero() && value.IsZero() {
			js.refundAdd(int64(clearRefund))
		}
		return
	}
	// Dirty slot.
	if !original.IsZero() {
		if present.IsZero() {
			js.refundAdd(-int64(clearRefund))
		} else if value.IsZero() {
			js.refundAdd(int64(clearRefund))
		}
	}
	if original.Eq(value) {
		if original.IsZero() {
			js.refundAdd(int64(params.SstoreSetGasEIP2200 - sloadGas))
		} else {
			js.refundAdd(int64(resetGas - sloadGas))
		}
	}
}

func (js *JournaledState) refundAdd(delta int64) {
	js.journal = append(js.journal, refundChange{prev: js.refund})
	js.refund += delta
}

// SetCode installs code on an account. The hash must be keccak256 of the
// code.
func (js *JournaledState) SetCode(addr types.Address, code []byte, hash types.Hash) {
	acc := js.Account(addr)
	js.journal = append(js.journal, codeChange{
		addr:        addr,
		prevCode:    acc.Info.Code,
		prevHash:    acc.Info.CodeHash,
		prevTouched: acc.Touched,
	})
	acc.Info.Code = code
	acc.Info.CodeHash = hash
	acc.Touched = true
}

// SetCodeHashed installs code, computing its hash.
func (js *JournaledState) SetCodeHashed(addr types.Address, code []byte) {
	js.SetCode(addr, code, crypto.Keccak256Hash(code))
}

// NewContractAcc converts addr into a freshly created contract account. It
// returns false on collision: the address already carries non-empty code or
// a non-zero nonce. On success the account's storage reads miss to zero.
func (js *JournaledState) NewContractAcc(addr types.Address, isPrecompile bool, db Database) (bool, error) {
	if _, err := js.LoadAccount(addr, db); err != nil {
		return false, err
	}
	acc := js.state[addr]
	if acc.Info.Nonce != 0 {
		return false, nil
	}
	if !(acc.Info.CodeHash == types.KeccakEmpty || acc.Info.CodeHash.IsZero()) {
		return false, nil
	}
	js.journal = append(js.journal, createChange{
		addr:            addr,
		prevNew:         acc.IsNew,
		prevNotExisting: acc.NotExisting,
		prevTouched:     acc.Touched,
	})
	acc.IsNew = true
	acc.NotExisting = false
	acc.IsPrecompile = acc.IsPrecompile || isPrecompile
	acc.Touched = true
	return true, nil
}

// SelfDestruct records a destruction intent for addr, crediting its balance
// to target immediately. The account itself is removed at finalize.
func (js *JournaledState) SelfDestruct(addr, target types.Address, db Database) (SelfDestructResult, error) {
	targetCold, targetExists, err := js.LoadAccountExist(target, db)
	if err != nil {
		return SelfDestructResult{}, err
	}
	if _, err := js.LoadAccount(addr, db); err != nil {
		return SelfDestructResult{}, err
	}
	acc := js.state[addr]
	result := SelfDestructResult{
		HadValue:            !acc.Info.Balance.IsZero(),
		TargetCold:          targetCold,
		PreviouslyDestroyed: acc.IsDestroyed,
		TargetExists:        targetExists,
	}
	value := acc.Info.Balance
	js.journal = append(js.journal, destroyChange{
		addr:          addr,
		prevDestroyed: acc.IsDestroyed,
		prevBalance:   acc.Info.Balance,
		prevTouched:   acc.Touched,
	})
	acc.IsDestroyed = true
	acc.Info.Balance = uint256.Int{}
	acc.Touched = true
	if target != addr {
		js.BalanceAdd(target, &value)
	}
	return result, nil
}

// Log appends a log entry.
func (js *JournaledState) Log(entry types.Log) {
	js.journal = append(js.journal, logChange{})
	js.logs = append(js.logs, entry)
}

// CreateCheckpoint snapshots the journal for a new frame.
func (js *JournaledState) CreateCheckpoint() Checkpoint {
	js.depth++
	return Checkpoint{
		journalLen: len(js.journal),
		logLen:     len(js.logs),
		refund:     js.refund,
	}
}

// CheckpointCommit drops the checkpoint, retaining all entries.
func (js *JournaledState) CheckpointCommit(cp Checkpoint) {
	js.depth--
}

// CheckpointRevert undoes every journal entry appended after the
// checkpoint, in reverse order, truncates the log, and restores the refund
// counter.
func (js *JournaledState) CheckpointRevert(cp Checkpoint) {
	for i := len(js.journal) - 1; i >= cp.journalLen; i-- {
		js.journal[i].revert(js)
	}
	js.journal = js.journal[:cp.journalLen]
	js.logs = js.logs[:cp.logLen]
	js.refund = cp.refund
	js.depth--
}

// Finalize consumes the journal, producing the per-address effective state
// diff and the ordered log list. The journal is reset afterwards.
func (js *JournaledState) Finalize() (map[types.Address]Account, []types.Log) {
	diff := make(map[types.Address]Account)
	for addr, acc := range js.state {
		if !acc.Touched {
			continue
		}
		if acc.IsDestroyed {
			diff[addr] = Account{Info: types.NewAccountInfo(), IsDestroyed: true}
			continue
		}
		storage := make(map[uint256.Int]StorageSlot, len(acc.Storage))
		for slot, entry := range acc.Storage {
			storage[slot] = entry
		}
		diff[addr] = Account{
			Info:           acc.Info.Copy(),
			Storage:        storage,
			StorageCleared: acc.IsNew,
		}
	}
	logs := js.logs

	js.state = make(map[types.Address]*JournalAccount)
	js.logs = nil
	js.journal = nil
	js.refund = 0
	js.depth = 0

	return diff, logs
}
