package idgen

import (
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator issues reproducible ids from a seed. Transaction ids are ULIDs
// stamped with the event time, so they sort chronologically; other ids are
// version 4 UUIDs.
type Generator struct {
	mu      sync.Mutex
	reader  *rand.ChaCha8
	entropy *ulid.MonotonicEntropy
}

// New creates a Generator. Two generators with the same seed yield the same
// sequence of ids for the same sequence of calls.
func New(seed uint64) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], ^seed)

	reader := rand.NewChaCha8(key)
	return &Generator{
		reader:  reader,
		entropy: ulid.Monotonic(reader, 0),
	}
}

// Generate returns a ULID whose timestamp component is at.
func (g *Generator) Generate(at time.Time) string {
	if at.Before(time.Unix(0, 0)) {
		at = time.Unix(0, 0)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(at), g.entropy).String()
}

// NewUUID returns a random UUID drawn from the seeded stream.
func (g *Generator) NewUUID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return uuid.Must(uuid.NewRandomFromReader(g.reader)).String()
}
