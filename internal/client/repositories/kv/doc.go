// Package kv stores opaque byte values under string keys in the local
// SQLite database. The session store keeps its credentials and cached user
// here.
package kv
