// Package agent implements the tool-calling chat agent of the shop assistant.
//
// A ToolAgent keeps one history per session. Each Chat call appends the user
// message, asks the model for a reply with the registered tool definitions,
// executes any requested tool calls in order, feeds the results back and
// repeats until the model answers with plain text or the step limit is hit.
// Tool failures are reported to the model as {"error": "..."} results
// rather than aborting the turn.
package agent
