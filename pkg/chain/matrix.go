package chain

import "fmt"

// Matrix is a dense n x n transition matrix. Entry (i, j) is the
// probability of moving from state j to state i, so each column holds the
// outgoing distribution of one state. A Matrix is immutable once built.
type Matrix struct {
	n    int
	data []float64 // row-major
}

// NewMatrix builds a Matrix from a slice of rows. It returns ErrNotSquare
// if the input is empty, ragged, or not square. The rows are copied, so the
// caller may keep mutating its own slices afterwards.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("matrix has no rows: %w", ErrNotSquare)
	}
	m := &Matrix{n: n, data: make([]float64, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), n, ErrNotSquare)
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m, nil
}

// Dim returns the number of states n.
func (m *Matrix) Dim() int { return m.n }

// At returns entry (i, j): the probability of moving from state j to state i.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Column returns a copy of column j, the outgoing distribution of state j.
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, m.n)
	for i := range col {
		col[i] = m.data[i*m.n+j]
	}
	return col
}

// ColumnSum returns the sum of column j.
func (m *Matrix) ColumnSum(j int) float64 {
	var sum float64
	for i := 0; i < m.n; i++ {
		sum += m.data[i*m.n+j]
	}
	return sum
}
