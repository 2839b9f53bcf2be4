// Package server composes the game gRPC entrypoint.
//
// It opens the SQLite session store, builds the engine with its activity log
// and watch hub, and serves TabletopService alongside the standard health
// service until the context ends.
package server
