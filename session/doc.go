// Package session persists conversation ledgers between runs, keyed by a
// caller chosen session id. Stores hand out snapshots rather than shared
// pointers so a caller can mutate its working ledger freely and decide when
// to write it back.
//
// Add additional backends (Redis, Postgres, Firestore, etc.) in sub-packages
// without changing any calling code. Only the wiring layer needs to decide
// which implementation to instantiate.
package session
