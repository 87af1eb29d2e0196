package ident

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Clock interface {
	Now() time.Time
}

// ULIDGenerator issues transaction ids that sort by submission time.
type ULIDGenerator struct {
	clock   Clock
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator(clock Clock) *ULIDGenerator {
	return newULIDGenerator(clock, rand.Reader)
}

func newULIDGenerator(clock Clock, source io.Reader) *ULIDGenerator {
	return &ULIDGenerator{clock: clock, entropy: ulid.Monotonic(source, 0)}
}

func (g *ULIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.clock.Now().UTC()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generate tx id: %w", err)
	}
	return id.String(), nil
}
