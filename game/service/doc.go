// Package service provides the business logic layer for the warehouse game.
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. It resolves configs, owns session isolation and turns raw
// engine moves into results the transports can return directly: per-step
// traces, pushed box counts, the obstacle that stopped a move and the reason
// a bulk request stopped early.
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "left", false)
//
// Solve runs a config's whole move sequence on the original and the widened
// warehouse without creating a session.
package service
