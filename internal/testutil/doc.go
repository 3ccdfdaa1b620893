// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation histories of core.Content
// values. It is not intended for production usage.
package testutil
