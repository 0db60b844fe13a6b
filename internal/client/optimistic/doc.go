// Package optimistic applies user actions to a local cache before the
// server confirms them and puts the old value back if the server refuses.
package optimistic
