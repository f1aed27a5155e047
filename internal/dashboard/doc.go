// Package dashboard holds the recommendation board: the polling and refresh
// state machine that owns the displayed state, and the pure view model built
// from that state.
//
// All state writes happen on the board's dispatch goroutine. Network calls run
// on their own goroutines and post their outcome back to it, so a fetch is
// applied whole or not at all, in completion order. Results that arrive after
// Stop are dropped.
package dashboard
