package corpus

import (
	"errors"
	"math"
	"testing"
)

func sentencesOf(words ...[]string) [][]string {
	return words
}

// labelIndex finds a label's column index or fails the test.
func labelIndex(t *testing.T, model *Model, label string) int {
	t.Helper()
	for i, l := range model.Labels {
		if l == label {
			return i
		}
	}
	t.Fatalf("label %q not found in %v", label, model.Labels)
	return -1
}

func TestBuild(t *testing.T) {
	model, err := NewBuilder().Build(sentencesOf(
		[]string{"the", "cat", "sat"},
		[]string{"the", "dog", "sat"},
	))
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	// Vocabulary {the, cat, sat, dog} plus the two sentinels.
	if len(model.Labels) != 6 {
		t.Fatalf("got %d states, want 6: %v", len(model.Labels), model.Labels)
	}
	if model.Labels[0] != StartToken {
		t.Errorf("Labels[0] = %q, want %q", model.Labels[0], StartToken)
	}
	if model.Labels[5] != StopToken {
		t.Errorf("Labels[5] = %q, want %q", model.Labels[5], StopToken)
	}

	stop := labelIndex(t, model, StopToken)
	for i := range model.Labels {
		want := 0.0
		if i == stop {
			want = 1.0
		}
		if got := model.Rows[i][stop]; got != want {
			t.Errorf("stop column row %d = %v, want %v", i, got, want)
		}
	}

	// Both sentences end at "sat", so its whole mass goes to <EOC>.
	sat := labelIndex(t, model, "sat")
	if got := model.Rows[stop][sat]; got != 1 {
		t.Errorf("P(<EOC> | sat) = %v, want 1", got)
	}

	// "the" is followed by "cat" once and "dog" once.
	the := labelIndex(t, model, "the")
	cat := labelIndex(t, model, "cat")
	dog := labelIndex(t, model, "dog")
	if got := model.Rows[cat][the]; got != 0.5 {
		t.Errorf("P(cat | the) = %v, want 0.5", got)
	}
	if got := model.Rows[dog][the]; got != 0.5 {
		t.Errorf("P(dog | the) = %v, want 0.5", got)
	}

	// Both sentences start with "the".
	if got := model.Rows[the][0]; got != 1 {
		t.Errorf("P(the | <SOC>) = %v, want 1", got)
	}

	// Every column must be normalized.
	for j := range model.Labels {
		var sum float64
		for i := range model.Labels {
			sum += model.Rows[i][j]
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("column %q sums to %v", model.Labels[j], sum)
		}
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	testCases := []struct {
		name      string
		sentences [][]string
	}{
		{name: "no sentences", sentences: nil},
		{name: "only empty sentences", sentences: sentencesOf([]string{}, []string{})},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewBuilder().Build(tc.sentences); !errors.Is(err, ErrEmptyCorpus) {
				t.Errorf("Build() error = %v, want %v", err, ErrEmptyCorpus)
			}
		})
	}
}

func TestBuildReservedToken(t *testing.T) {
	for _, token := range []string{StartToken, StopToken} {
		_, err := NewBuilder().Build(sentencesOf([]string{"hello", token}))
		if !errors.Is(err, ErrReservedToken) {
			t.Errorf("Build() with token %q error = %v, want %v", token, err, ErrReservedToken)
		}
	}
}

func TestBuildEmptySentenceTransitionsStraightToStop(t *testing.T) {
	model, err := NewBuilder().Build(sentencesOf(
		[]string{"hello", "world"},
		[]string{},
	))
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	stop := labelIndex(t, model, StopToken)
	hello := labelIndex(t, model, "hello")
	if got := model.Rows[hello][0]; got != 0.5 {
		t.Errorf("P(hello | <SOC>) = %v, want 0.5", got)
	}
	if got := model.Rows[stop][0]; got != 0.5 {
		t.Errorf("P(<EOC> | <SOC>) = %v, want 0.5", got)
	}
}

func TestBuildMinCountPruning(t *testing.T) {
	t.Run("prunes rare transition", func(t *testing.T) {
		model, err := NewBuilder(WithMinCount(2)).Build(sentencesOf(
			[]string{"a", "b"},
			[]string{"a", "b"},
			[]string{"a"},
		))
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		a := labelIndex(t, model, "a")
		b := labelIndex(t, model, "b")
		stop := labelIndex(t, model, StopToken)
		// The single a -> <EOC> bigram is pruned, so a's mass collapses
		// onto b.
		if got := model.Rows[b][a]; got != 1 {
			t.Errorf("P(b | a) = %v, want 1", got)
		}
		if got := model.Rows[stop][a]; got != 0 {
			t.Errorf("P(<EOC> | a) = %v, want 0", got)
		}
	})

	t.Run("pruned-out state is degenerate", func(t *testing.T) {
		// "c" occurs once, so pruning at 2 strips its only outgoing count.
		_, err := NewBuilder(WithMinCount(2)).Build(sentencesOf(
			[]string{"a", "b"},
			[]string{"a", "c"},
			[]string{"a", "b"},
		))
		if !errors.Is(err, ErrDegenerateColumn) {
			t.Errorf("Build() error = %v, want %v", err, ErrDegenerateColumn)
		}
	})
}
