package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type SHA256 struct{}

func (SHA256) SumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Digest streams r through SHA-256 and returns the memo hash of the
// content together with the number of bytes read.
func (SHA256) Digest(r io.Reader) (domain.MemoHash, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return domain.MemoHash{}, n, fmt.Errorf("hash content: %w", err)
	}
	var out domain.MemoHash
	copy(out[:], h.Sum(nil))
	return out, n, nil
}

func (s SHA256) DigestHex(r io.Reader) (string, error) {
	sum, _, err := s.Digest(r)
	if err != nil {
		return "", err
	}
	return strings.ToLower(sum.String()), nil
}
