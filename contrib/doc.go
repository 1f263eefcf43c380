// Package contrib holds applications and tools built on the fernanden data
// layer that are not part of the core library.
//
// [github.com/fernanden/fernanden.go/contrib/backoffice] is the
// administrative back-office: an HTTP JSON API and command line over the
// entity services, with schema migrations for the Postgres and SQLite
// backends.
//
// Packages under contrib are outside the compatibility guarantees of the
// root package.
package contrib
