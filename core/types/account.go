package types

import "github.com/holiman/uint256"

// KeccakEmpty is keccak256 of the empty byte string, the code hash of every
// account without code.
var KeccakEmpty = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

// AccountInfo holds the balance, nonce and code identity of an account.
// Code is nil while only the hash is known; LoadCode on the journal
// materialises it.
type AccountInfo struct {
	Balance  uint256.Int
	Nonce    uint64
	CodeHash Hash
	Code     []byte
}

// NewAccountInfo returns an empty account: zero balance, zero nonce, empty
// code.
func NewAccountInfo() AccountInfo {
	return AccountInfo{CodeHash: KeccakEmpty, Code: []byte{}}
}

// IsEmpty reports whether the account is empty per the Spurious Dragon
// (EIP-161) definition: zero balance, zero nonce, no code.
func (a *AccountInfo) IsEmpty() bool {
	return a.Balance.IsZero() && a.Nonce == 0 &&
		(a.CodeHash == KeccakEmpty || a.CodeHash == Hash{})
}

// Copy returns a deep copy of the account info.
func (a *AccountInfo) Copy() AccountInfo {
	cp := *a
	if a.Code != nil {
		cp.Code = make([]byte, len(a.Code))
		copy(cp.Code, a.Code)
	}
	return cp
}
