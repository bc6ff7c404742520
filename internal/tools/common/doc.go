// Package common provides shared utilities for MCP tool implementations:
// the instrumented handler wrapper, account resolution and argument
// parsing helpers used by every tool package.
package common
