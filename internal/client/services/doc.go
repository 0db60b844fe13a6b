// Package services implements the user-facing actions of the client on top
// of the API: the feed, itineraries, the follow graph and media uploads.
// Likes, follows and ratings are applied optimistically and every action
// reports its outcome through a Notifier.
package services
