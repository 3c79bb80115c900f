package draw

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator stamps ids on new events. Ids only need to be collision
// improbable within one session.
type IDGenerator interface {
	NextID() string
}

// XIDGenerator produces time-ordered ids.
type XIDGenerator struct{}

// NextID returns a new xid.
func (XIDGenerator) NextID() string {
	return xid.New().String()
}

// SeededGenerator produces deterministic ids made of a counter and a salt
// drawn from a seeded source.
type SeededGenerator struct {
	counter uint64

	mu   sync.Mutex
	rand *rand.Rand
}

// NewSeededGenerator creates a generator whose sequence depends only on seed.
func NewSeededGenerator(seed int64) *SeededGenerator {
	return &SeededGenerator{rand: rand.New(rand.NewSource(seed))}
}

// NextID returns "<counter>-<4 hex digits>".
func (g *SeededGenerator) NextID() string {
	n := atomic.AddUint64(&g.counter, 1)

	g.mu.Lock()
	salt := g.rand.Intn(0x10000)
	g.mu.Unlock()

	return fmt.Sprintf("%d-%04x", n, salt)
}

// FixedIDs hands out the given ids in order, then falls back to next.
type FixedIDs struct {
	IDs  []string
	Next IDGenerator
}

// NextID pops the next fixed id.
func (f *FixedIDs) NextID() string {
	if len(f.IDs) == 0 {
		if f.Next == nil {
			f.Next = XIDGenerator{}
		}
		return f.Next.NextID()
	}
	id := f.IDs[0]
	f.IDs = f.IDs[1:]
	return id
}
