// Package server assembles the HTTP API for the screening service: routes,
// middleware chain, and graceful shutdown.
package server
