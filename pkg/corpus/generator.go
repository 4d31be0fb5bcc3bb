package corpus

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/CTAG07/Babbler/pkg/chain"
)

// SentenceGenerator produces random sentences from a corpus-backed Markov
// chain. It owns the chain rather than extending it: the chain stays a
// general-purpose object, the generator just knows about the sentinel
// bracketing.
type SentenceGenerator struct {
	chain  *chain.Chain
	logger *slog.Logger
}

// NewSentenceGenerator builds a model from the given tokenized sentences
// and wraps it in a generator. Options are passed through to chain.New;
// use chain.WithRand for deterministic output. Errors from the builder and
// from chain construction are surfaced unchanged.
func NewSentenceGenerator(sentences [][]string, opts ...chain.Option) (*SentenceGenerator, error) {
	model, err := NewBuilder().Build(sentences)
	if err != nil {
		return nil, err
	}
	return NewModelGenerator(model, opts...)
}

// NewModelGenerator wraps an already-built model, for example one loaded
// from a store or imported from JSON.
func NewModelGenerator(model *Model, opts ...chain.Option) (*SentenceGenerator, error) {
	c, err := model.Chain(opts...)
	if err != nil {
		return nil, err
	}
	return &SentenceGenerator{
		chain:  c,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the generator. By default, all logs are
// discarded.
func (g *SentenceGenerator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Chain exposes the underlying Markov chain for direct walks and stats.
func (g *SentenceGenerator) Chain() *chain.Chain { return g.chain }

// Babble generates one sentence: a full path from the start state to the
// absorbing stop state, with the two sentinel endpoints stripped and the
// remaining tokens joined by single spaces. The endpoints are removed
// positionally, so a sentence never loses an interior token. Termination
// is guaranteed by the stop state's forced self-loop.
func (g *SentenceGenerator) Babble() (string, error) {
	visited, err := g.chain.Path(StartToken, StopToken)
	if err != nil {
		return "", err
	}
	sentence := strings.TrimSpace(strings.Join(visited[1:len(visited)-1], " "))
	g.logger.Debug("Sentence generated", slog.Int("tokens", len(visited)-2))
	return sentence, nil
}

// BabbleStream generates one sentence token by token on the returned
// channel, which is closed when the stop state is reached or the context
// is cancelled. The sentinel states are never emitted. This is the bounded
// entry point for callers that cannot trust the chain to terminate or that
// need a deadline.
func (g *SentenceGenerator) BabbleStream(ctx context.Context) <-chan string {
	tokenChan := make(chan string)

	go func() {
		defer close(tokenChan)

		current := StartToken
		for {
			next, err := g.chain.Transition(current)
			if err != nil {
				g.logger.ErrorContext(ctx, "transition failed mid-stream",
					slog.String("state", current), slog.Any("error", err))
				return
			}
			if next == StopToken {
				return
			}
			select {
			case <-ctx.Done():
				g.logger.DebugContext(ctx, "Generation stream cancelled by context")
				return
			case tokenChan <- next:
			}
			current = next
		}
	}()

	return tokenChan
}
