package host

import "math"

// GasSchedule prices the operations a contract can perform on the host.
type GasSchedule struct {
	// TxGas is the intrinsic price of every message.
	TxGas uint64 `toml:"tx"`
	// TxDataZeroGas and TxDataNonZeroGas are charged per byte of message
	// input.
	TxDataZeroGas    uint64 `toml:"tx_data_zero"`
	TxDataNonZeroGas uint64 `toml:"tx_data_non_zero"`

	SLoadGas     uint64 `toml:"sload"`
	SStoreSetGas uint64 `toml:"sstore_set"`
	SStoreGas    uint64 `toml:"sstore"`

	CallGas      uint64 `toml:"call"`
	CallValueGas uint64 `toml:"call_value"`
	// CallStipend is added on top of the forwarded gas whenever a call
	// transfers value.
	CallStipend uint64 `toml:"call_stipend"`
	CreateGas   uint64 `toml:"create"`

	LogGas      uint64 `toml:"log"`
	LogTopicGas uint64 `toml:"log_topic"`
	LogDataGas  uint64 `toml:"log_data"`

	BalanceGas uint64 `toml:"balance"`

	MaxCallDepth int `toml:"max_call_depth"`
}

// DefaultGasSchedule returns prices close to the ones of public EVM
// networks.
func DefaultGasSchedule() GasSchedule {
	return GasSchedule{
		TxGas:            21000,
		TxDataZeroGas:    4,
		TxDataNonZeroGas: 16,
		SLoadGas:         800,
		SStoreSetGas:     20000,
		SStoreGas:        5000,
		CallGas:          700,
		CallValueGas:     9000,
		CallStipend:      2300,
		CreateGas:        32000,
		LogGas:           375,
		LogTopicGas:      375,
		LogDataGas:       8,
		BalanceGas:       700,
		MaxCallDepth:     1024,
	}
}

// IntrinsicGas returns the price of submitting a message with given input.
func (s GasSchedule) IntrinsicGas(data []byte) uint64 {
	gas := s.TxGas
	for _, b := range data {
		if b == 0 {
			gas = addGas(gas, s.TxDataZeroGas)
		} else {
			gas = addGas(gas, s.TxDataNonZeroGas)
		}
	}
	return gas
}

// LogCost returns the price of emitting a log.
func (s GasSchedule) LogCost(topics, size int) uint64 {
	gas := addGas(s.LogGas, mulGas(s.LogTopicGas, uint64(topics)))
	return addGas(gas, mulGas(s.LogDataGas, uint64(size)))
}

// forwardable returns the maximum gas a frame can pass on to a sub-call.
func forwardable(available uint64) uint64 {
	return available - available/64
}

func addGas(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func mulGas(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}
