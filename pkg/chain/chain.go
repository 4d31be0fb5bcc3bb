package chain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
)

// DefaultTolerance is the absolute tolerance used when checking that each
// matrix column sums to 1.
const DefaultTolerance = 1e-8

// Chain is a finite-state Markov chain. It holds the transition matrix, the
// ordered state labels, and the label-to-index map derived from them. All
// fields are fixed at construction; the only mutable piece is the random
// source, so a single Chain must not be shared by concurrent callers of
// Transition unless they serialize access or give each goroutine its own
// Chain via WithRand.
type Chain struct {
	matrix *Matrix
	labels []string
	index  map[string]int
	rng    *rand.Rand
	tol    float64
}

// Option configures a Chain during construction.
type Option func(*Chain)

// WithLabels sets the state labels, in column order. Without this option
// the labels default to "0".."n-1".
func WithLabels(labels []string) Option {
	return func(c *Chain) { c.labels = labels }
}

// WithRand sets the random source used for transition sampling. Passing a
// seeded source makes generation reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(c *Chain) { c.rng = rng }
}

// WithTolerance sets the absolute tolerance for the column-sum check.
func WithTolerance(tol float64) Option {
	return func(c *Chain) { c.tol = tol }
}

// New validates the transition matrix and constructs a Chain. It returns
// ErrNotStochastic if any entry is negative or any column sum deviates from
// 1 beyond the tolerance, ErrLabelCount if the label list does not match
// the matrix dimension, and ErrDuplicateLabel if two labels collide.
func New(m *Matrix, opts ...Option) (*Chain, error) {
	c := &Chain{
		matrix: m,
		tol:    DefaultTolerance,
	}
	for _, opt := range opts {
		opt(c)
	}

	n := m.Dim()
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			if m.At(i, j) < 0 {
				return nil, fmt.Errorf("entry (%d, %d) is negative: %w", i, j, ErrNotStochastic)
			}
		}
		if sum := m.ColumnSum(j); math.Abs(sum-1) > c.tol {
			return nil, fmt.Errorf("column %d sums to %v: %w", j, sum, ErrNotStochastic)
		}
	}

	if c.labels == nil {
		c.labels = make([]string, n)
		for i := range c.labels {
			c.labels[i] = strconv.Itoa(i)
		}
	} else if len(c.labels) != n {
		return nil, fmt.Errorf("got %d labels for %d states: %w", len(c.labels), n, ErrLabelCount)
	}

	c.index = make(map[string]int, n)
	for i, label := range c.labels {
		if _, ok := c.index[label]; ok {
			return nil, fmt.Errorf("label %q: %w", label, ErrDuplicateLabel)
		}
		c.index[label] = i
	}

	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return c, nil
}

// Dim returns the number of states.
func (c *Chain) Dim() int { return c.matrix.Dim() }

// Labels returns a copy of the state labels in column order.
func (c *Chain) Labels() []string {
	labels := make([]string, len(c.labels))
	copy(labels, c.labels)
	return labels
}

// Matrix returns the chain's transition matrix.
func (c *Chain) Matrix() *Matrix { return c.matrix }

// Transition makes one random step from the given state: it draws a single
// sample from the categorical distribution in that state's column and
// returns the label of the drawn state. It returns ErrUnknownLabel if the
// label is not a state of the chain.
func (c *Chain) Transition(label string) (string, error) {
	j, ok := c.index[label]
	if !ok {
		return "", fmt.Errorf("state %q: %w", label, ErrUnknownLabel)
	}
	return c.labels[c.sampleColumn(j)], nil
}

// sampleColumn draws one index from the categorical distribution in column
// j using a cumulative sum against a uniform draw.
func (c *Chain) sampleColumn(j int) int {
	u := c.rng.Float64()
	n := c.matrix.Dim()
	last := 0
	var cum float64
	for i := 0; i < n; i++ {
		p := c.matrix.At(i, j)
		if p <= 0 {
			continue
		}
		last = i
		cum += p
		if u < cum {
			return i
		}
	}
	// Float round-off can leave cum a hair under 1; land on the final
	// positive entry.
	return last
}

// Walk starts at the given state and makes n-1 successive transitions,
// returning the n labels visited, start included. It returns ErrWalkLength
// if n < 1 and ErrUnknownLabel if start is not a state of the chain.
func (c *Chain) Walk(start string, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("got %d: %w", n, ErrWalkLength)
	}
	if _, ok := c.index[start]; !ok {
		return nil, fmt.Errorf("start state %q: %w", start, ErrUnknownLabel)
	}

	visited := make([]string, 0, n)
	visited = append(visited, start)
	current := start
	for i := 1; i < n; i++ {
		next, err := c.Transition(current)
		if err != nil {
			return nil, err
		}
		visited = append(visited, next)
		current = next
	}
	return visited, nil
}

// Path transitions from start until stop is produced and returns every
// label visited, both endpoints included. Termination is a structural
// precondition: the caller must know that stop is reachable and absorbing
// enough to be hit eventually (for example the forced stop state of a
// corpus model). For untrusted matrices use PathN instead.
func (c *Chain) Path(start, stop string) ([]string, error) {
	return c.path(start, stop, -1)
}

// PathN behaves like Path but gives up with ErrPathLimit after max
// transitions without reaching stop.
func (c *Chain) PathN(start, stop string, max int) ([]string, error) {
	if max < 1 {
		return nil, fmt.Errorf("got limit %d: %w", max, ErrWalkLength)
	}
	return c.path(start, stop, max)
}

func (c *Chain) path(start, stop string, max int) ([]string, error) {
	if _, ok := c.index[start]; !ok {
		return nil, fmt.Errorf("start state %q: %w", start, ErrUnknownLabel)
	}
	if _, ok := c.index[stop]; !ok {
		return nil, fmt.Errorf("stop state %q: %w", stop, ErrUnknownLabel)
	}

	visited := []string{start}
	current := start
	for steps := 0; current != stop; steps++ {
		if max >= 0 && steps >= max {
			return nil, fmt.Errorf("no %q after %d transitions: %w", stop, max, ErrPathLimit)
		}
		next, err := c.Transition(current)
		if err != nil {
			return nil, err
		}
		visited = append(visited, next)
		current = next
	}
	return visited, nil
}
