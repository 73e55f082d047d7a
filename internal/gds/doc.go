// Package gds provides an HTTP client for the ground data system API.
//
// # Overview
//
// The ground data system decodes the downlink from the embedded deployment and
// republishes it as JSON over a small REST surface. This package defines the
// read-only client Kestrel uses to poll that surface, together with the record
// types that mirror the wire schema.
//
// # History Envelope
//
// Every incrementally polled endpoint (/channels, /events, /commands) wraps its
// payload in the same envelope:
//
//	{ "history": [...], "validation": <n>, "errors": [...] }
//
// "validation" is the server's monotonic count of items it has handed to this
// session, used downstream to detect silent data loss; -1 means the server does
// not track one. "errors" are per-item server-side processing failures that
// accompany an otherwise successful response.
//
// # Sessions
//
// The server keeps a cursor per session key and returns only items the session
// has not yet seen. NewClient generates a fresh random key, so each run of the
// dashboard starts from live data rather than replaying the full history.
//
// # Request Handling
//
// All requests use context for cancellation, carry Accept and User-Agent
// headers, time out after five seconds, and return wrapped errors describing
// what failed. Transport failures, HTTP error statuses, and malformed JSON are
// all surfaced as ordinary errors; retry policy belongs to the poll scheduler.
package gds
