// Package model defines the provider-agnostic language model contract used by
// the chat agent. Provider adapters live in the openai and anthropic
// subpackages; MockModel replays scripted responses for tests.
package model
