// Package retrieval implements the lexical relevance scoring, ranking and
// context assembly used to ground answers in a space's saved items. All
// functions here are pure: no I/O, no randomness, no mutation of inputs.
package retrieval
