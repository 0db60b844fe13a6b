// Package session persists the signed-in session between runs: the access
// token, the refresh token and a cached copy of the user. The three values
// are written and removed together; a partial set found on load is treated
// as no session at all and purged.
package session
