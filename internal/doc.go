// Package internal contains helper utilities that are intentionally private
// to goSession: session ID generation and access-token claim extraction.
//
// # Sub-packages
//
//   - flows — pure-function flow orchestrators for every Engine operation
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
