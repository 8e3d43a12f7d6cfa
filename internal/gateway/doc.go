// Package gateway is the only path from the views to the backend. Reads
// return Result values whose Value is always renderable, so a dead backend
// shows empty lists rather than failing the view. Failures are logged with
// the request id and failure class and are never retried here; the next poll
// tick is the retry.
package gateway
