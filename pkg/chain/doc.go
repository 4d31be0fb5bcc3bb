/*
Package chain implements discrete, finite, time-homogeneous Markov chains
over a column-stochastic transition matrix.

A Chain is constructed once from a validated Matrix and an optional list of
state labels, and is read-only afterwards. It exposes single-step random
transitions, fixed-length walks, and absorption-bounded paths. The random
source is explicit and injectable, so generation can be made deterministic
for testing.
*/
package chain
