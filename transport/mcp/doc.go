// Package mcp provides a Model Context Protocol server for Hunt the Wumpus.
//
// The server is a thin client: every tool call is proxied to the REST API
// of a running HTTP host, so agents and browsers can share the same games.
//
// MCP Tools:
//   - create_session, list_sessions, get_session, end_session
//   - move, shoot, restart, game_instructions, last_response
//   - save_game, restore_game
//   - list_configs
//
// Usage:
//
//	client := mcp.NewClient("http://127.0.0.1:8080")
//	client.Run() // stdio
//
// The same server answers JSON-RPC messages posted to the host's /mcp
// endpoint through GetMCPServer().HandleMessage.
package mcp
