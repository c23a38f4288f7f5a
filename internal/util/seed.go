// Package util holds small cross-cutting helpers shared by every component:
// deterministic seeding of the pseudo-random generators.
package util

import (
	"encoding/binary"
	"math/rand"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// DeriveSeed hashes name (and an optional user-supplied seed string) into a
// stable int64 seed with blake2b, so a TestSpec with the same name and seed
// field always drives its parameter sources and weighted template selection
// through the same pseudo-random sequence. Leaving seed empty still produces
// a value deterministic in name alone, which is enough to make unit tests
// reproducible without requiring every spec to set one.
func DeriveSeed(name, seed string) int64 {
	h, err := blake2b.New512([]byte(seed))
	if err != nil {
		// blake2b.New512 only errors on an oversized key; our key is a
		// bounded config string, so this path is unreachable in practice.
		h, _ = blake2b.New512(nil)
	}
	_, _ = h.Write([]byte(name))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// lockedSource wraps a rand.Source64 with a mutex, the same pattern
// math/rand's own package-level globalRand uses internally (see
// lockedSource in math/rand/rand.go) to make a single PRNG safe to share
// across goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// NewRand builds a *rand.Rand seeded via DeriveSeed. The CLI builds one rng
// shared by every parameter source and the engine builds a second, from
// the same name and seed, for weighted template selection; every worker
// goroutine draws from these concurrently, so the underlying source is
// mutex-guarded via lockedSource rather than left as the bare, non-safe
// default source.
func NewRand(name, seed string) *rand.Rand {
	src := rand.NewSource(DeriveSeed(name, seed)).(rand.Source64)
	return rand.New(&lockedSource{src: src})
}
