// Package extract locates **marked** vocabulary in markdown documents and
// returns each distinct word once, together with the sentence it was first
// seen in.
package extract
