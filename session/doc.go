// Package session keeps per-conversation chat history in memory.
//
// A History is the ordered list of contents exchanged in one conversation
// (user turns, assistant replies, tool results). InMemoryStore maps session
// ids to histories and creates them on first use.
package session
