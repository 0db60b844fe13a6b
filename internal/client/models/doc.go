// Package models defines the client-side data models of guIA: users and
// their capabilities, posts, itineraries and the credential pair issued by
// the API. JSON field names follow the API's snake_case wire format.
package models
