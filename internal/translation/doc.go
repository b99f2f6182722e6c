// Package translation owns everything known about word translations: the
// durable write-through cache, the result files handed back by the external
// translation step, Anki TSV import, and optional LLM translators that can
// play the external step.
package translation
