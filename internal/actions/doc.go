// Package actions implements optimistic orphan resolution and audit feedback.
//
// Removing an item from the unresolved list is synchronous with a successful
// Complete. Closing the detail view is a separate, delayed presentation step
// the caller schedules from Outcome.CloseAfter.
package actions
