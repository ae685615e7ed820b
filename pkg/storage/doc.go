// Package storage provides persistent storage for the dinner board.
// It uses BadgerDB as the embedded database, stores JSON encoded records
// under `kind:id` keys and exposes a change feed for same-process views.
package storage
