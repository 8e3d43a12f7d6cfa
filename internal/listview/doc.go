// Package listview holds the filtered, paginated list controller behind the
// Gold Mine screen.
//
// The controller never performs I/O. It hands out Request values tagged with
// a sequence number and applies a Response only when its sequence is the
// latest issued, so a slow response to a superseded query can never overwrite
// a newer page. Filter edits are debounced through generation tickets that
// the caller redeems after the debounce delay.
package listview
