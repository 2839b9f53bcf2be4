// Package timeouts collects the durations shared between the game server and
// its clients.
package timeouts

import "time"

// GRPCDial caps the wait when dialing the game server.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single tool-initiated call to the game server.
const GRPCRequest = 5 * time.Second

// HealthProbe caps one health check round trip.
const HealthProbe = time.Second

// HealthMonitorInterval spaces background health checks of a dialed peer.
const HealthMonitorInterval = 30 * time.Second

// Shutdown limits how long a server waits for in-flight calls to drain.
const Shutdown = 5 * time.Second
