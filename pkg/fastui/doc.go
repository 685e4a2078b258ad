// Package fastui models the target component schema served to the FastUI
// frontend: a JSON list of typed components, each tagged with a "type"
// field, whose interactive parts reference events (go-to, page) instead of
// code.
//
// Only the subset of the protocol that uiengineer emits is modelled. Every
// component fills its own "type" tag when encoded, so callers build plain
// struct values.
package fastui
