// Package core defines the role-based message content exchanged between the
// chat agent, its tools and model providers: text, function calls and
// function responses.
package core
