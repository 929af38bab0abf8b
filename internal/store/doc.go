// Package store is the device-local row store backing the catalog cache and
// the cart.
//
// Rows live in a SQLite database opened in WAL mode behind a single
// connection. Every committed write made through WithTx publishes the names of
// the tables it touched on a Notifier; Observe turns a query plus the tables it
// reads into a live query that re-emits its whole result set after each
// change.
//
// Notifications coalesce. A subscriber that is busy while several writes
// commit sees one pending signal, and the reload that follows observes all of
// them. Intermediate states may therefore be skipped but a committed write is
// never missed.
package store
