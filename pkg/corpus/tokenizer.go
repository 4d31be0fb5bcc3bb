package corpus

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Tokenizer is an interface that defines the contract for splitting an
// input stream into tokenized sentences. This keeps the builder
// independent of the specific tokenization strategy.
type Tokenizer interface {
	// NewStream returns a stateful SentenceStream for processing an io.Reader.
	NewStream(io.Reader) SentenceStream
}

// SentenceStream is an interface for a stateful tokenizer that yields one
// tokenized sentence at a time.
type SentenceStream interface {
	// Next returns the next sentence from the stream. It returns io.EOF as
	// the error when the stream is fully consumed.
	Next() ([]string, error)
}

// LineTokenizer is a Tokenizer for text with one complete sentence per
// line. Each line is split on whitespace and blank lines are skipped.
type LineTokenizer struct {
	lowercase bool
}

// TokenizerOption configures a LineTokenizer.
type TokenizerOption func(*LineTokenizer)

// WithLowercase folds every token to lower case, collapsing "The" and
// "the" into one state.
func WithLowercase() TokenizerOption {
	return func(t *LineTokenizer) { t.lowercase = true }
}

// NewLineTokenizer creates a tokenizer with default settings, which can be
// overridden by providing one or more TokenizerOption functions.
func NewLineTokenizer(opts ...TokenizerOption) *LineTokenizer {
	t := &LineTokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewStream returns the stream processor.
func (t *LineTokenizer) NewStream(r io.Reader) SentenceStream {
	return &lineStream{
		scanner:   bufio.NewScanner(r),
		lowercase: t.lowercase,
	}
}

type lineStream struct {
	scanner   *bufio.Scanner
	lowercase bool
}

// Next returns the next non-blank line as a token slice. When the stream
// is exhausted it returns a nil slice and io.EOF; any other error
// indicates a problem reading from the underlying stream.
func (s *lineStream) Next() ([]string, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		line := s.scanner.Text()
		if s.lowercase {
			line = strings.ToLower(line)
		}
		tokens := strings.Fields(line)
		if len(tokens) > 0 {
			return tokens, nil
		}
	}
}

// ReadSentences drains a stream into a slice of tokenized sentences, ready
// for Builder.Build.
func ReadSentences(r io.Reader, t Tokenizer) ([][]string, error) {
	stream := t.NewStream(r)
	var sentences [][]string
	for {
		sentence, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return sentences, nil
		}
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, sentence)
	}
}
