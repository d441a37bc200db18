// Package httpx holds the gin plumbing shared by every service: request IDs,
// access logging, panic recovery, JSON error bodies and a server runner with
// graceful shutdown.
package httpx
