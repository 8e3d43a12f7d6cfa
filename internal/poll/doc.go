// Package poll runs fixed-period refresh tasks bound to a view's lifetime.
//
// A Subscription owns one ticker goroutine. The task runs inline, so at most
// one invocation is in flight per subscription. Visibility is checked at each
// tick rather than by stopping the ticker.
package poll
