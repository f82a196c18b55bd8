// Package models lists the OpenAI models usable by translink serve, split
// into chat models for translation and speech models for synthesis.
package models
