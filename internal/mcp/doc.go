// Package mcp exposes tacit sessions as MCP tools.
//
// The server uses the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp)
// and calls the session registry directly. An assistant drives a spiral with
// tacit_start, feeds user messages through tacit_submit, and reads the
// resulting artifacts with tacit_artifacts.
package mcp
