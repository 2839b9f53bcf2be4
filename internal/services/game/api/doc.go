// Package api contains the game service API implementations.
//
// Subpackages:
//   - grpc/game: TabletopService, one method per engine operation plus the
//     activity read path and the WatchSession stream
//   - grpc/auth: caller resolution from bearer tokens or identity headers
//   - grpc/metadata: request metadata helpers and interceptors
//   - grpc/interceptors: request logging
//
// MCP tools call TabletopService through internal/services/mcp/service.
package api
