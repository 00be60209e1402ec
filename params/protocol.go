package params

// Protocol gas constants. Names follow the EIP that introduced or last
// repriced each charge.
const (
	TxGas                 uint64 = 21000 // base cost of every transaction
	TxGasContractCreation uint64 = 53000 // base cost of a creation tx, Homestead+ (EIP-2)

	TxDataZeroGas            uint64 = 4  // per zero byte of tx data
	TxDataNonZeroGasFrontier uint64 = 68 // per non-zero byte, pre-Istanbul
	TxDataNonZeroGasEIP2028  uint64 = 16 // per non-zero byte, Istanbul+ (EIP-2028)

	TxAccessListAddressGas    uint64 = 2400 // per access-list address, Berlin+ (EIP-2930)
	TxAccessListStorageKeyGas uint64 = 1900 // per access-list storage key, Berlin+

	CreateDataGas uint64 = 200 // per byte of deployed code

	MaxCodeSize = 0x6000 // EIP-170 deployed code size limit

	CallCreateDepth = 1024 // maximum call/create nesting

	RefundQuotient        uint64 = 2 // pre-London refund cap divisor
	RefundQuotientEIP3529 uint64 = 5 // London+ refund cap divisor (EIP-3529)

	// SSTORE refund schedule (EIP-2200 net gas metering, repriced by
	// EIP-2929 and EIP-3529).
	SstoreClearsScheduleRefundEIP2200 uint64 = 15000
	SstoreClearsScheduleRefundEIP3529 uint64 = 4800
	SstoreSetGasEIP2200               uint64 = 20000
	SstoreResetGasEIP2200             uint64 = 5000
	SloadGasEIP2200                   uint64 = 800
	ColdSloadCostEIP2929              uint64 = 2100
	WarmStorageReadCostEIP2929        uint64 = 100

	// Legacy (pre-Istanbul) SSTORE clear refund.
	SstoreRefundGas uint64 = 15000

	// Precompile pricing for the natively provided contracts.
	Sha256BaseGas       uint64 = 60
	Sha256PerWordGas    uint64 = 12
	Ripemd160BaseGas    uint64 = 600
	Ripemd160PerWordGas uint64 = 120
	IdentityBaseGas     uint64 = 15
	IdentityPerWordGas  uint64 = 3
	EcrecoverGas        uint64 = 3000
)
