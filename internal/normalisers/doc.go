// Package normalisers provides implementations of the Normaliser interface
// for the document formats found in contract projects. Each normaliser knows
// how to extract text for a set of file extensions.
//
// Normalisers are registered with the Registry at startup.
package normalisers
