package chain

import (
	"errors"
	"testing"
)

func TestNewMatrix(t *testing.T) {
	testCases := []struct {
		name    string
		rows    [][]float64
		wantErr error
	}{
		{
			name: "valid 2x2",
			rows: [][]float64{{0.5, 0.8}, {0.5, 0.2}},
		},
		{
			name:    "empty input",
			rows:    [][]float64{},
			wantErr: ErrNotSquare,
		},
		{
			name:    "non-square 2x3",
			rows:    [][]float64{{0.1, 0.2, 0.7}, {0.9, 0.8, 0.3}},
			wantErr: ErrNotSquare,
		},
		{
			name:    "ragged rows",
			rows:    [][]float64{{0.5, 0.5}, {0.5}},
			wantErr: ErrNotSquare,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMatrix(tc.rows)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("NewMatrix() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMatrix() unexpected error: %v", err)
			}
			if m.Dim() != len(tc.rows) {
				t.Errorf("Dim() = %d, want %d", m.Dim(), len(tc.rows))
			}
		})
	}
}

func TestMatrixAccessors(t *testing.T) {
	m, err := NewMatrix([][]float64{
		{0.5, 0.8, 0},
		{0.5, 0.2, 0},
		{0, 0, 1},
	})
	if err != nil {
		t.Fatalf("NewMatrix() failed: %v", err)
	}

	if got := m.At(0, 1); got != 0.8 {
		t.Errorf("At(0, 1) = %v, want 0.8", got)
	}
	if got := m.At(2, 2); got != 1 {
		t.Errorf("At(2, 2) = %v, want 1", got)
	}

	col := m.Column(1)
	want := []float64{0.8, 0.2, 0}
	for i := range want {
		if col[i] != want[i] {
			t.Errorf("Column(1)[%d] = %v, want %v", i, col[i], want[i])
		}
	}

	for j := 0; j < 3; j++ {
		if sum := m.ColumnSum(j); sum != 1 {
			t.Errorf("ColumnSum(%d) = %v, want 1", j, sum)
		}
	}
}

func TestMatrixCopiesInput(t *testing.T) {
	rows := [][]float64{{1, 0}, {0, 1}}
	m, err := NewMatrix(rows)
	if err != nil {
		t.Fatalf("NewMatrix() failed: %v", err)
	}

	rows[0][0] = 99
	if got := m.At(0, 0); got != 1 {
		t.Errorf("mutation of source rows leaked into matrix: At(0, 0) = %v", got)
	}
}
