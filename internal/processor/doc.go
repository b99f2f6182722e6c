// Package processor contains the workflow behind the markanki commands. It
// wires extraction, the translation cache, batching, reconciliation and
// artifact writing together and reports progress as it goes.
package processor
