// Package domain models disaster records and the enrichment data attached
// to them.
//
// # Audit trail
//
// Every disaster carries an append-only audit trail. The first entry is
// written at creation time and every subsequent mutation appends one more
// entry; entries are never reordered, rewritten, or truncated. Timestamps
// come from the package clock (see [SetClock]) so tests can freeze time.
// A mutation with no acting user records the sentinel user id "unknown".
//
// # Cache keys
//
// Externally sourced enrichment data is cached under keys of the form
//
//	{resource}-{disasterID}[-{qualifier}]
//
// e.g. "social-media-42" or "image-verification-42-https://example.com/a.jpg".
// Cached values are opaque JSON with an absolute expiry; the store never
// evaluates expiry itself, readers decide staleness against their own clock.
// Stale rows are overwritten in place on the next refresh, never deleted.
//
// # Ports
//
// Interfaces for the persistence layer and the external data providers live
// here so that services depend on capabilities, not concrete clients.
package domain
