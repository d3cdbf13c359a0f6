// Package rate throttles login attempts per credential key. Each key gets
// its own token bucket; every attempt consumes a token and a successful
// login resets the bucket. Disabled limiters allow everything.
package rate
