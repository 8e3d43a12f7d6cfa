// Package mockapi serves an in-memory imitation of the Dahell backend HTTP
// surface. It backs the mock-api command for offline development and the
// client, gateway and app integration tests.
package mockapi
