// Package cache provides the token-keyed caches behind session and
// permission state.
//
// Both caches share one generic contract, [Cache]. Entries have no TTL here:
// session-timeout policy, if any, belongs to an external collaborator, and
// this package only guarantees explicit removal semantics. RemoveWhere acts
// on a snapshot of the keys present when the scan starts, so entries added
// concurrently are never force-removed by an in-flight scan.
//
// [Memory] is the default, an unbounded in-process map. [Redis] keeps the
// same contract on a Redis keyspace for deployments that already hold
// session state out of process.
package cache
