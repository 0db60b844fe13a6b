// Package router maps CLI locations to screens and decides, from the
// current session, whether a screen may be shown.
package router
