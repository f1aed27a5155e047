// Package upstream is the client for the recommendation engine's HTTP API.
//
// The engine exposes two endpoints: a GET returning the current
// recommendation set with metadata, and a POST asking it to recompute the set
// out of band. The client performs no retries; callers decide when to try
// again.
package upstream
