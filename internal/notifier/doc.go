// Package notifier delivers text messages through a transport.Adapter.
//
// Every send waits on a shared token-bucket limiter and is retried with
// jittered exponential backoff on transient failures. Permanent failures
// (transport.ErrUndeliverable) return immediately. A platform back-off hint
// (transport.RetryAfterError) replaces the computed delay.
//
// Sends are synchronous: the caller learns the final outcome.
package notifier
