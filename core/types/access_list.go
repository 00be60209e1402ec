package types

import "github.com/holiman/uint256"

// AccessTuple is one entry of an EIP-2930 access list.
type AccessTuple struct {
	Address     Address
	StorageKeys []uint256.Int
}

// AccessList is the per-transaction list of addresses and storage keys to
// pre-warm.
type AccessList []AccessTuple

// StorageKeyCount returns the total number of storage keys across all tuples.
func (al AccessList) StorageKeyCount() uint64 {
	var n uint64
	for _, tuple := range al {
		n += uint64(len(tuple.StorageKeys))
	}
	return n
}
