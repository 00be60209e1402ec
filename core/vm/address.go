package vm

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethexec/ethexec/core/types"
	"github.com/ethexec/ethexec/crypto"
	"github.com/holiman/uint256"
)

// CreateAddress computes a CREATE contract address per the Yellow Paper:
// keccak256(rlp([sender, nonce]))[12:].
func CreateAddress(caller types.Address, nonce uint64) types.Address {
	data, err := rlp.EncodeToBytes([]interface{}{caller, nonce})
	if err != nil {
		// The encoder cannot fail on an address/uint pair.
		panic(err)
	}
	return types.BytesToAddress(crypto.Keccak256(data)[12:])
}

// Create2Address computes a CREATE2 contract address per EIP-1014:
// keccak256(0xff ++ sender ++ salt ++ keccak256(initCode))[12:], with the
// salt in 32-byte big-endian form.
func Create2Address(caller types.Address, initCodeHash types.Hash, salt *uint256.Int) types.Address {
	saltBytes := salt.Bytes32()
	data := make([]byte, 0, 85)
	data = append(data, 0xff)
	data = append(data, caller[:]...)
	data = append(data, saltBytes[:]...)
	data = append(data, initCodeHash[:]...)
	return types.BytesToAddress(crypto.Keccak256(data)[12:])
}
