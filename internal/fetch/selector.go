package fetch

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Selection modes accepted by NewSelector.
const (
	SelectOrdered    = "ordered"
	SelectRoundRobin = "round-robin"
	SelectRandom     = "random"
)

// Selector chooses the order in which relay endpoints are tried for one
// fetch. Implementations must be safe for concurrent use.
type Selector interface {
	// Order returns a permutation of [0, n).
	Order(n int) []int
}

// NewSelector returns the selector for a configured mode. An empty mode
// means ordered.
func NewSelector(mode string) (Selector, error) {
	switch mode {
	case "", SelectOrdered:
		return OrderedSelector{}, nil
	case SelectRoundRobin:
		return &RoundRobinSelector{}, nil
	case SelectRandom:
		return NewRandomSelector(time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown relay selection mode %q", mode)
	}
}

// OrderedSelector tries endpoints in their configured order.
type OrderedSelector struct{}

func (OrderedSelector) Order(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// RoundRobinSelector rotates the starting endpoint across calls. The counter
// is atomic; strict fairness under concurrency is not required.
type RoundRobinSelector struct {
	next atomic.Uint64
}

func (s *RoundRobinSelector) Order(n int) []int {
	if n <= 0 {
		return nil
	}
	start := int((s.next.Add(1) - 1) % uint64(n))
	out := make([]int, n)
	for i := range out {
		out[i] = (start + i) % n
	}
	return out
}

// RandomSelector samples a random order per fetch. The seed is injectable so
// tests can pin a deterministic sequence.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSelector) Order(n int) []int {
	if n <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Perm(n)
}
