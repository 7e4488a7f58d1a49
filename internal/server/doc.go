// Package server exposes QueryState over HTTP and WebSocket.
//
// Routes:
//
//	GET  /api/health   liveness probe
//	GET  /api/query    normalize the request's query string, reply with a snapshot
//	POST /api/query    build a state from a JSON body, reply with a snapshot
//	GET  /ws           live session; commands mutate a per-connection state
//	GET  /metrics      Prometheus metrics, when enabled
//
// Every live session owns one QueryState and touches it only from its read
// loop, so no locking is needed around the state.
package server
