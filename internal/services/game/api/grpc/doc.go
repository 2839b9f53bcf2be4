// Package grpc groups the gRPC transport of the game service.
package grpc
