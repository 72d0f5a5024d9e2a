// Package normalisers provides implementations of the Normaliser interface.
// A normaliser turns one raw transcript document into full text plus the
// segment offset and start time arrays the index is built from.
package normalisers
