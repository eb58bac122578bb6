// Package audit persists cardinality guard events for later inspection.
//
// The package provides a Store interface with an in-memory backend for tests
// and a SQLite backend for production, a Recorder that subscribes to the guard
// as an event sink and writes entries asynchronously, and a Janitor that
// prunes old entries on a cron schedule.
package audit
