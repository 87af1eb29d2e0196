package domain

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

const (
	ManifestFile = "memostamp.yaml"
	SQLiteFile   = "state.db"
	GitDir       = "state.git"
)

const (
	StateRoot    = "state"
	ReceiptsRoot = "receipts"
	LedgerFile   = "ledger.yaml"
	ReceiptExt   = ".pb"
)

// StateEntryPath shards state entries by the first two key bytes. Keys
// shorter than that live directly under the state root.
func StateEntryPath(key []byte) string {
	hexKey := strings.ToUpper(hex.EncodeToString(key))
	if len(key) < 2 {
		return path.Join(StateRoot, hexKey)
	}
	return path.Join(StateRoot, hexKey[0:2], hexKey[2:4], hexKey)
}

func ReceiptPath(seq int64) string {
	return path.Join(ReceiptsRoot, fmt.Sprintf("%012d%s", seq, ReceiptExt))
}
