// Package dahell provides the HTTP client and wire types for the Dahell
// backend API.
//
// The client covers the Gold Mine listing and visual search, the Cluster Lab
// audit stream, orphan investigation and feedback, and the system control
// endpoints. Every request carries an X-Request-ID header. Failures come back
// as *TransportError, *ServerError or *DecodeError so callers can tell a dead
// backend from a misbehaving one.
package dahell
