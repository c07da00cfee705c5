// Package driving holds the use-case interfaces the CLI, TUI and MCP
// adapters call into. internal/core/services implements them.
package driving
