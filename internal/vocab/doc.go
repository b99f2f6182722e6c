// Package vocab defines the word record shared by every stage of the
// pipeline and the normalization that gives each word its identity.
package vocab
