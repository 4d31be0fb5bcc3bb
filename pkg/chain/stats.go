package chain

// Stats holds aggregated structural information about a chain.
type Stats struct {
	States    int      // The number of states n.
	Absorbing []string // Labels of states whose only transition is to themselves.
	Support   []int    // Per state, the number of states reachable in one step.
}

// Stats reports the chain's size, its absorbing states, and the one-step
// support of each state's outgoing distribution. It is a cheap full scan of
// the matrix; chains are small enough that no caching is done.
func (c *Chain) Stats() Stats {
	n := c.matrix.Dim()
	stats := Stats{
		States:  n,
		Support: make([]int, n),
	}
	for j := 0; j < n; j++ {
		support := 0
		selfOnly := true
		for i := 0; i < n; i++ {
			if c.matrix.At(i, j) == 0 {
				continue
			}
			support++
			if i != j {
				selfOnly = false
			}
		}
		stats.Support[j] = support
		if selfOnly && support == 1 {
			stats.Absorbing = append(stats.Absorbing, c.labels[j])
		}
	}
	return stats
}
