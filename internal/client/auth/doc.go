// Package auth owns the client's session: it restores a stored session at
// startup, signs users in and out, keeps the cached user in step with
// profile edits and drops the session when the API reports it expired.
//
// States move Unknown -> Authenticated | Unauthenticated, then between
// Authenticated and Unauthenticated. The Manager never holds its lock across
// a network call; each response is applied against whatever the state is
// when it arrives, and a response that belongs to a session that has since
// ended is discarded. Operations report failures through Result rather than
// returning errors.
package auth
