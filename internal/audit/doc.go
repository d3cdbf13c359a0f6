// Package audit defines the structured audit event model, the sink
// contract, and the asynchronous dispatcher that decouples engine hot paths
// from sink latency. Audit is always best-effort: a slow or failing sink can
// drop events but never blocks or fails a security decision.
package audit
