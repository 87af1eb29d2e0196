package domain

import "encoding/binary"

const TimestampSize = 8

// EncodeTimestamp renders a ledger sequence the way the hook host stores a
// native int64: eight little-endian bytes.
func EncodeTimestamp(seq int64) []byte {
	buf := make([]byte, TimestampSize)
	binary.LittleEndian.PutUint64(buf, uint64(seq))
	return buf
}

// DecodeTimestamp reports false when the value is not exactly eight bytes.
func DecodeTimestamp(value []byte) (int64, bool) {
	if len(value) != TimestampSize {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(value)), true
}
