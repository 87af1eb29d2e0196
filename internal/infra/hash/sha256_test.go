package hash

import (
	"strings"
	"testing"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestSumHex(t *testing.T) {
	if got := (SHA256{}).SumHex([]byte("hello")); got != helloSHA256 {
		t.Fatalf("unexpected digest %s", got)
	}
}

func TestDigestMatchesSumHex(t *testing.T) {
	sum, n, err := (SHA256{}).Digest(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Digest returned error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 bytes read, got %d", n)
	}
	if sum.String() != strings.ToUpper(helloSHA256) {
		t.Fatalf("unexpected memo hash %s", sum)
	}

	hexSum, err := (SHA256{}).DigestHex(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("DigestHex returned error: %v", err)
	}
	if hexSum != helloSHA256 {
		t.Fatalf("unexpected hex digest %s", hexSum)
	}
}
