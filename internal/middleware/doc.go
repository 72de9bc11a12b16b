// Package middleware provides HTTP middleware for the tagging API.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with optional health check filtering
//   - Prometheus request metrics labelled by gorilla/mux route template
package middleware
