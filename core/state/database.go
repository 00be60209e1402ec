// Package state implements the world-state access layers of the execution
// core: the backing-database interfaces, an in-memory cache overlay, and the
// transaction-scoped journaled state with nested checkpoints.
package state

import (
	"encoding/binary"
	"strconv"

	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/crypto"
	"github.com/holiman/uint256"
)

// Database is the mutating read interface to a world-state backing store.
// Implementations may cache misses on access. All reads must be
// deterministic for a fixed block height.
type Database interface {
	// Basic returns the account info for addr, or nil if the account does
	// not exist.
	Basic(addr types.Address) (*types.AccountInfo, error)
	// CodeByHash returns the code identified by hash. Returning empty code
	// for an unknown hash is acceptable only if Basic reports the owning
	// account as absent.
	CodeByHash(hash types.Hash) ([]byte, error)
	// Storage returns the value of the given storage slot, zero if unset.
	Storage(addr types.Address, slot *uint256.Int) (uint256.Int, error)
	// BlockHash returns the hash of the block at the given height.
	BlockHash(number *uint256.Int) (types.Hash, error)
}

// DatabaseRef is the non-caching read flavour: implementations must not
// mutate internal state, making them safe to share across readers.
type DatabaseRef interface {
	BasicRef(addr types.Address) (*types.AccountInfo, error)
	CodeByHashRef(hash types.Hash) ([]byte, error)
	StorageRef(addr types.Address, slot *uint256.Int) (uint256.Int, error)
	BlockHashRef(number *uint256.Int) (types.Hash, error)
}

// DatabaseCommit is implemented by stores that can absorb the state diff
// produced by a finalised transaction.
type DatabaseCommit interface {
	Commit(changes map[types.Address]Account)
}

// refWrapper adapts a DatabaseRef into a Database.
type refWrapper struct {
	ref DatabaseRef
}

// WrapDatabaseRef exposes a read-only DatabaseRef through the mutating
// Database interface.
func WrapDatabaseRef(ref DatabaseRef) Database {
	return &refWrapper{ref: ref}
}

func (w *refWrapper) Basic(addr types.Address) (*types.AccountInfo, error) {
	return w.ref.BasicRef(addr)
}

func (w *refWrapper) CodeByHash(hash types.Hash) ([]byte, error) {
	return w.ref.CodeByHashRef(hash)
}

func (w *refWrapper) Storage(addr types.Address, slot *uint256.Int) (uint256.Int, error) {
	return w.ref.StorageRef(addr, slot)
}

func (w *refWrapper) BlockHash(number *uint256.Int) (types.Hash, error) {
	return w.ref.BlockHashRef(number)
}

// EmptyDB is a DatabaseRef with no accounts. Block hashes are derived by
// hashing the decimal block number, giving deterministic but distinct
// values.
type EmptyDB struct{}

// NewEmptyDB returns an empty backing store.
func NewEmptyDB() *EmptyDB { return &EmptyDB{} }

func (db *EmptyDB) BasicRef(addr types.Address) (*types.AccountInfo, error) {
	return nil, nil
}

func (db *EmptyDB) CodeByHashRef(hash types.Hash) ([]byte, error) {
	return []byte{}, nil
}

func (db *EmptyDB) StorageRef(addr types.Address, slot *uint256.Int) (uint256.Int, error) {
	return uint256.Int{}, nil
}

func (db *EmptyDB) BlockHashRef(number *uint256.Int) (types.Hash, error) {
	return crypto.Keccak256Hash([]byte(strconv.FormatUint(number.Uint64(), 10))), nil
}

// BenchmarkDB holds a single pre-funded account at the zero address carrying
// a fixed bytecode. It backs interpreter benchmarks that must not touch a
// real store.
type BenchmarkDB struct {
	code     []byte
	codeHash types.Hash
}

// NewBenchmarkDB creates a BenchmarkDB deploying the given bytecode at the
// zero address.
func NewBenchmarkDB(code []byte) *BenchmarkDB {
	return &BenchmarkDB{code: code, codeHash: crypto.Keccak256Hash(code)}
}

func (db *BenchmarkDB) Basic(addr types.Address) (*types.AccountInfo, error) {
	if addr.IsZero() {
		info := types.AccountInfo{
			Nonce:    1,
			Balance:  *uint256.NewInt(10000000),
			CodeHash: db.codeHash,
			Code:     db.code,
		}
		return &info, nil
	}
	return nil, nil
}

func (db *BenchmarkDB) CodeByHash(hash types.Hash) ([]byte, error) {
	if hash == db.codeHash {
		return db.code, nil
	}
	return []byte{}, nil
}

func (db *BenchmarkDB) Storage(addr types.Address, slot *uint256.Int) (uint256.Int, error) {
	return uint256.Int{}, nil
}

func (db *BenchmarkDB) BlockHash(number *uint256.Int) (types.Hash, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], number.Uint64())
	return crypto.Keccak256Hash(buf[:]), nil
}

var (
	_ DatabaseRef = (*EmptyDB)(nil)
	_ Database    = (*BenchmarkDB)(nil)
)
