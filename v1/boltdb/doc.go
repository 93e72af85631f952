// Package boltdb is the default, embedded vectordb backend.
//
// One database file exists per database name (<Path>/<DatabaseName>.db). The
// file holds a "collections" bucket with one nested bucket per collection.
// Each record is stored as JSON under an 8-byte big-endian sequence number,
// which keeps insertion order and lets duplicate chunk ids coexist.
//
// Queries scan the whole collection and rank by cosine distance, which is
// adequate for the few thousand chunks a resume corpus produces.
package boltdb
