/*
Package corpus builds word-level Markov chain models from tokenized text
and generates random sentences from them.

A Builder counts word bigrams across sentences, brackets every sentence
with the reserved <SOC> and <EOC> states, and normalizes the counts into a
column-stochastic Model. A SentenceGenerator wraps the resulting chain and
produces sentences by walking from <SOC> to the absorbing <EOC> state.
Corpus input arrives as already-tokenized sentences; LineTokenizer is a
ready-made tokenizer for one-sentence-per-line text streams.
*/
package corpus
