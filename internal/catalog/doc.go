// Package catalog provides the list of languages offered for translation.
// The list is read from a durable SQLite-backed key/value store and only
// fetched over HTTP when no usable cached copy exists.
package catalog
