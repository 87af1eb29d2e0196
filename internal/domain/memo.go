package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const MemoHashSize = 32

var ErrInvalidMemoHash = errors.New("memo hash must be 32 bytes")

// MemoHash is the opaque content key a transaction carries in its memo data.
type MemoHash [MemoHashSize]byte

func MemoHashFromBytes(data []byte) (MemoHash, error) {
	var hash MemoHash
	if len(data) != MemoHashSize {
		return hash, fmt.Errorf("%w: got %d", ErrInvalidMemoHash, len(data))
	}
	copy(hash[:], data)
	return hash, nil
}

func ParseMemoHash(value string) (MemoHash, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return MemoHash{}, fmt.Errorf("%w: %v", ErrInvalidMemoHash, err)
	}
	return MemoHashFromBytes(decoded)
}

// String renders the hash as upper-case hex, the ledger's memo convention.
func (h MemoHash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func (h MemoHash) Bytes() []byte {
	out := make([]byte, MemoHashSize)
	copy(out, h[:])
	return out
}
