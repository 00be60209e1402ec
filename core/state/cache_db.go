package state

import (
	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/crypto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
)

// blockHashCacheSize bounds the block-hash memo; BLOCKHASH reaches at most
// 256 blocks back, so a small LRU covers every well-formed program.
const blockHashCacheSize = 512

// AccountState tags how the cache learned about an account.
type AccountState uint8

const (
	// AccountUntouched means the account was read through but never
	// written by a committed transaction.
	AccountUntouched AccountState = iota
	// AccountNotExisting marks an address the backing store has no account
	// for. Pre-Spurious-Dragon semantics distinguish this from an empty
	// account.
	AccountNotExisting
	// AccountTouched means a committed transaction modified the account.
	AccountTouched
	// AccountStorageCleared means storage was wiped (selfdestruct or fresh
	// creation); further storage misses resolve to zero without consulting
	// the backing store.
	AccountStorageCleared
)

// DbAccount is the cache-layer record for one account.
type DbAccount struct {
	Info    types.AccountInfo
	State   AccountState
	Storage map[uint256.Int]uint256.Int
}

func newDbAccount(info *types.AccountInfo) *DbAccount {
	if info == nil {
		return &DbAccount{
			Info:    types.NewAccountInfo(),
			State:   AccountNotExisting,
			Storage: make(map[uint256.Int]uint256.Int),
		}
	}
	return &DbAccount{
		Info:    info.Copy(),
		Storage: make(map[uint256.Int]uint256.Int),
	}
}

// info returns the account info as the Database interface reports it: nil
// for not-existing accounts.
func (a *DbAccount) info() *types.AccountInfo {
	if a.State == AccountNotExisting {
		return nil
	}
	cp := a.Info.Copy()
	return &cp
}

// CacheDB is an in-memory overlay in front of any DatabaseRef. It memoises
// reads, absorbs committed post-transaction writes, and distinguishes
// not-existing accounts from empty ones. CacheDB itself implements
// DatabaseRef, so overlays compose.
type CacheDB struct {
	accounts    map[types.Address]*DbAccount
	contracts   map[types.Hash][]byte
	blockHashes *lru.Cache
	db          DatabaseRef
}

// NewCacheDB creates a cache overlay over the given backing store.
func NewCacheDB(db DatabaseRef) *CacheDB {
	contracts := map[types.Hash][]byte{
		types.KeccakEmpty: {},
		{}:                {},
	}
	hashes, _ := lru.New(blockHashCacheSize)
	return &CacheDB{
		accounts:    make(map[types.Address]*DbAccount),
		contracts:   contracts,
		blockHashes: hashes,
		db:          db,
	}
}

// NewInMemoryDB is a CacheDB over an empty backing store: a fully
// self-contained world state.
func NewInMemoryDB() *CacheDB {
	return NewCacheDB(NewEmptyDB())
}

// insertContract installs the account's code in the contracts table keyed by
// hash, filling in the hash if the caller left it zero.
func (c *CacheDB) insertContract(info *types.AccountInfo) {
	if len(info.Code) > 0 {
		if info.CodeHash.IsZero() {
			info.CodeHash = crypto.Keccak256Hash(info.Code)
		}
		if _, ok := c.contracts[info.CodeHash]; !ok {
			code := make([]byte, len(info.Code))
			copy(code, info.Code)
			c.contracts[info.CodeHash] = code
		}
	}
	if info.CodeHash.IsZero() {
		info.CodeHash = types.KeccakEmpty
	}
}

// InsertAccountInfo seeds account info without touching its storage.
func (c *CacheDB) InsertAccountInfo(addr types.Address, info types.AccountInfo) {
	c.insertContract(&info)
	acc, ok := c.accounts[addr]
	if !ok {
		acc = newDbAccount(&info)
		acc.State = AccountUntouched
		c.accounts[addr] = acc
	}
	acc.Info = info
	if acc.State == AccountNotExisting {
		acc.State = AccountUntouched
	}
}

// loadAccount fetches the cache record for addr, pulling it from the
// backing store on first touch.
func (c *CacheDB) loadAccount(addr types.Address) (*DbAccount, error) {
	if acc, ok := c.accounts[addr]; ok {
		return acc, nil
	}
	info, err := c.db.BasicRef(addr)
	if err != nil {
		return nil, err
	}
	acc := newDbAccount(info)
	c.accounts[addr] = acc
	return acc, nil
}

// InsertAccountStorage seeds one storage slot without overriding account
// info.
func (c *CacheDB) InsertAccountStorage(addr types.Address, slot, value *uint256.Int) error {
	acc, err := c.loadAccount(addr)
	if err != nil {
		return err
	}
	acc.Storage[*slot] = *value
	return nil
}

// ReplaceAccountStorage wipes the account's storage and installs the given
// slots, marking the account StorageCleared so misses resolve to zero.
func (c *CacheDB) ReplaceAccountStorage(addr types.Address, storage map[uint256.Int]uint256.Int) error {
	acc, err := c.loadAccount(addr)
	if err != nil {
		return err
	}
	acc.State = AccountStorageCleared
	acc.Storage = make(map[uint256.Int]uint256.Int, len(storage))
	for k, v := range storage {
		acc.Storage[k] = v
	}
	return nil
}

// --- Database (mutating, caching) ---

func (c *CacheDB) Basic(addr types.Address) (*types.AccountInfo, error) {
	acc, err := c.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.info(), nil
}

func (c *CacheDB) CodeByHash(hash types.Hash) ([]byte, error) {
	if code, ok := c.contracts[hash]; ok {
		return code, nil
	}
	code, err := c.db.CodeByHashRef(hash)
	if err != nil {
		return nil, err
	}
	c.contracts[hash] = code
	return code, nil
}

func (c *CacheDB) Storage(addr types.Address, slot *uint256.Int) (uint256.Int, error) {
	acc, err := c.loadAccount(addr)
	if err != nil {
		return uint256.Int{}, err
	}
	if value, ok := acc.Storage[*slot]; ok {
		return value, nil
	}
	if acc.State == AccountStorageCleared || acc.State == AccountNotExisting {
		return uint256.Int{}, nil
	}
	value, err := c.db.StorageRef(addr, slot)
	if err != nil {
		return uint256.Int{}, err
	}
	acc.Storage[*slot] = value
	return value, nil
}

func (c *CacheDB) BlockHash(number *uint256.Int) (types.Hash, error) {
	if hash, ok := c.blockHashes.Get(*number); ok {
		return hash.(types.Hash), nil
	}
	hash, err := c.db.BlockHashRef(number)
	if err != nil {
		return types.Hash{}, err
	}
	c.blockHashes.Add(*number, hash)
	return hash, nil
}

// --- DatabaseRef (no caching of misses) ---

func (c *CacheDB) BasicRef(addr types.Address) (*types.AccountInfo, error) {
	if acc, ok := c.accounts[addr]; ok {
		return acc.info(), nil
	}
	return c.db.BasicRef(addr)
}

func (c *CacheDB) CodeByHashRef(hash types.Hash) ([]byte, error) {
	if code, ok := c.contracts[hash]; ok {
		return code, nil
	}
	return c.db.CodeByHashRef(hash)
}

func (c *CacheDB) StorageRef(addr types.Address, slot *uint256.Int) (uint256.Int, error) {
	acc, ok := c.accounts[addr]
	if !ok {
		return c.db.StorageRef(addr, slot)
	}
	if value, ok := acc.Storage[*slot]; ok {
		return value, nil
	}
	if acc.State == AccountStorageCleared || acc.State == AccountNotExisting {
		return uint256.Int{}, nil
	}
	return c.db.StorageRef(addr, slot)
}

func (c *CacheDB) BlockHashRef(number *uint256.Int) (types.Hash, error) {
	if hash, ok := c.blockHashes.Get(*number); ok {
		return hash.(types.Hash), nil
	}
	return c.db.BlockHashRef(number)
}

// --- DatabaseCommit ---

// Commit applies a finalised transaction's state diff to the cache.
func (c *CacheDB) Commit(changes map[types.Address]Account) {
	for addr, change := range changes {
		if change.IsDestroyed {
			acc, ok := c.accounts[addr]
			if !ok {
				acc = newDbAccount(nil)
				c.accounts[addr] = acc
			}
			acc.Storage = make(map[uint256.Int]uint256.Int)
			acc.State = AccountNotExisting
			acc.Info = types.NewAccountInfo()
			continue
		}
		info := change.Info.Copy()
		c.insertContract(&info)

		acc, ok := c.accounts[addr]
		if !ok {
			acc = newDbAccount(nil)
			c.accounts[addr] = acc
		}
		acc.Info = info
		if change.StorageCleared {
			acc.State = AccountStorageCleared
			acc.Storage = make(map[uint256.Int]uint256.Int)
		} else {
			acc.State = AccountTouched
		}
		for slot, entry := range change.Storage {
			acc.Storage[slot] = entry.Present
		}
	}
}

var (
	_ Database       = (*CacheDB)(nil)
	_ DatabaseRef    = (*CacheDB)(nil)
	_ DatabaseCommit = (*CacheDB)(nil)
)
