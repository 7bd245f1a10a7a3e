// Package services defines interface [Store] for the externally-owned
// content collection and its HTTP/websocket client implementation.
//
// The remote store is authoritative: it supports create/update/delete of
// content items keyed by generated id and a live query filtered by userId
// that pushes full result-set snapshots on change. Local state everywhere
// else in the pipeline is either a staging buffer (the capture queue) or a
// cache (the dashboard list).
package services
