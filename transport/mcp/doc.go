// Package mcp exposes the warehouse REST API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes one or two HTTP requests
// against the API and the JSON reply is rendered as plain text for the agent.
//
// Tools:
//   - create_session, get_session, list_sessions
//   - game_state, move, bulk_move, reset_game, widen, play_script
//   - move_history, describe_cell, game_instructions
//   - list_configs, solve_config
//
// The move and bulk_move tools take an optional intent argument that is not
// sent anywhere. Agents use it to narrate their plan.
//
// Serving is left to the caller: GetMCPServer returns the server for stdio
// or for the /mcp HTTP endpoint mounted by the main package.
package mcp
