package types

// Log is a contract event emitted during execution. Topics holds zero to
// four indexed values.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

// Copy returns a deep copy of the log.
func (l *Log) Copy() Log {
	cp := Log{Address: l.Address}
	if l.Topics != nil {
		cp.Topics = make([]Hash, len(l.Topics))
		copy(cp.Topics, l.Topics)
	}
	if l.Data != nil {
		cp.Data = make([]byte, len(l.Data))
		copy(cp.Data, l.Data)
	}
	return cp
}
