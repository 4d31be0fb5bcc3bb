package corpus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	// StartToken is the reserved label of the synthetic start state. It is
	// always state 0 of a built model.
	StartToken = "<SOC>"
	// StopToken is the reserved label of the synthetic stop state. It is
	// always the last state of a built model and is forced to be absorbing.
	StopToken = "<EOC>"
)

var (
	// ErrEmptyCorpus is returned when the corpus contains no sentences or
	// no tokens at all.
	ErrEmptyCorpus = errors.New("corpus contains no tokens")

	// ErrReservedToken is returned when a corpus token collides with
	// StartToken or StopToken.
	ErrReservedToken = errors.New("corpus token collides with a reserved sentinel")

	// ErrDegenerateColumn is returned when a state accumulates no outgoing
	// transitions, which would normalize to NaN. Pruning rare transitions
	// can surface this even on corpora that build cleanly unpruned.
	ErrDegenerateColumn = errors.New("state has no outgoing transitions")
)

// Builder turns tokenized sentences into a Model. The zero-value-like
// builder from NewBuilder is ready to use; options adjust pruning and
// logging.
type Builder struct {
	minCount int
	logger   *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithMinCount drops bigram counts below n before normalization, removing
// rare and often noisy transitions from the model. The forced stop
// self-loop is never dropped. A value of 0 or 1 disables pruning.
func WithMinCount(n int) BuilderOption {
	return func(b *Builder) { b.minCount = n }
}

// WithLogger sets the logger for the Builder. By default all logs are
// discarded.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder, applying any options.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build computes the vocabulary of the corpus in first-seen order, counts
// transitions over every sentence bracketed as [<SOC>, t1..tk, <EOC>], and
// normalizes the counts column by column into a Model.
//
// The stop state's self-transition is forced to 1 before normalization, so
// <EOC> is always absorbing. Build returns ErrEmptyCorpus for a corpus
// with no tokens, ErrReservedToken if a token equals a sentinel label, and
// ErrDegenerateColumn if any state would normalize to a zero column.
func (b *Builder) Build(sentences [][]string) (*Model, error) {
	if len(sentences) == 0 {
		return nil, fmt.Errorf("no sentences: %w", ErrEmptyCorpus)
	}

	// Vocabulary in first-seen order. <SOC> is fixed at index 0, <EOC> is
	// appended last once the vocabulary is known.
	labels := []string{StartToken}
	index := map[string]int{StartToken: 0}
	var tokenCount int
	for _, sentence := range sentences {
		for _, token := range sentence {
			tokenCount++
			if token == StartToken || token == StopToken {
				return nil, fmt.Errorf("token %q: %w", token, ErrReservedToken)
			}
			if _, ok := index[token]; !ok {
				index[token] = len(labels)
				labels = append(labels, token)
			}
		}
	}
	if tokenCount == 0 {
		return nil, fmt.Errorf("%d sentences, all empty: %w", len(sentences), ErrEmptyCorpus)
	}

	stop := len(labels)
	index[StopToken] = stop
	labels = append(labels, StopToken)
	n := len(labels)

	// Count transitions: cell (next, current) accumulates one bigram.
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
	}
	for _, sentence := range sentences {
		current := 0 // <SOC>
		for _, token := range sentence {
			next := index[token]
			rows[next][current]++
			current = next
		}
		rows[stop][current]++
	}

	if b.minCount > 1 {
		var pruned int
		for i := range rows {
			for j := range rows[i] {
				if rows[i][j] > 0 && rows[i][j] < float64(b.minCount) {
					rows[i][j] = 0
					pruned++
				}
			}
		}
		b.logger.Debug("Pruned rare transitions",
			slog.Int("min_count", b.minCount),
			slog.Int("transitions_removed", pruned),
		)
	}

	// The stop state only ever transitions to itself, regardless of counts.
	for i := 0; i < n; i++ {
		rows[i][stop] = 0
	}
	rows[stop][stop] = 1

	// Normalize each column, refusing to divide by a zero sum.
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += rows[i][j]
		}
		if sum == 0 {
			return nil, fmt.Errorf("state %q: %w", labels[j], ErrDegenerateColumn)
		}
		for i := 0; i < n; i++ {
			rows[i][j] /= sum
		}
	}

	b.logger.Info("Corpus model built",
		slog.Int("sentences", len(sentences)),
		slog.Int("tokens", tokenCount),
		slog.Int("states", n),
	)

	return &Model{Labels: labels, Rows: rows}, nil
}
