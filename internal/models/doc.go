// Package models lists the OpenAI chat models that can drive the translate
// command.
package models
