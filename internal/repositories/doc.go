// Package repositories provides the persistence layer over the shared
// storage area used by all pipeline contexts.
//
// The storage area holds exactly two keys, each with a single designated
// writer: the identity token slot (written by the auth bridge) and the
// pending-content queue (appended by the capture handler, cleared by the
// drainer). No two components ever write the same key, so no locking is
// required beyond SQLite's own statement atomicity.
package repositories
