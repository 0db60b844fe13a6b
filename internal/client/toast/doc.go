// Package toast keeps the queue of short-lived notifications shown to the
// user. Each toast mounts shortly after it is added, closes on its own once
// its duration runs out and lingers briefly in a removing state before it
// disappears.
package toast
