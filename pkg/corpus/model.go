package corpus

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/CTAG07/Babbler/pkg/chain"
)

// Model is a built corpus model: the state labels in column order and the
// normalized transition matrix as rows. State 0 is StartToken and state
// n-1 is StopToken. A Model is plain data; Chain turns it into a validated
// chain.Chain.
type Model struct {
	Labels []string    `json:"labels"`
	Rows   [][]float64 `json:"matrix"`
}

// Chain constructs a Markov chain from the model. Extra options are passed
// through to chain.New, which is the place to inject a seeded random
// source via chain.WithRand.
func (m *Model) Chain(opts ...chain.Option) (*chain.Chain, error) {
	matrix, err := chain.NewMatrix(m.Rows)
	if err != nil {
		return nil, fmt.Errorf("model matrix: %w", err)
	}
	return chain.New(matrix, append([]chain.Option{chain.WithLabels(m.Labels)}, opts...)...)
}

// Export serializes the model as indented JSON to the provided io.Writer.
// This is useful for backups or for transferring models between databases.
func (m *Model) Export(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}

// ImportModel reads a JSON representation of a model from an io.Reader and
// checks that it describes a square matrix with one label per state. The
// stochastic check itself happens when the model is turned into a chain.
func ImportModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode json model: %w", err)
	}
	matrix, err := chain.NewMatrix(m.Rows)
	if err != nil {
		return nil, fmt.Errorf("imported matrix: %w", err)
	}
	if len(m.Labels) != matrix.Dim() {
		return nil, fmt.Errorf("imported model has %d labels for %d states: %w",
			len(m.Labels), matrix.Dim(), chain.ErrLabelCount)
	}
	return &m, nil
}
