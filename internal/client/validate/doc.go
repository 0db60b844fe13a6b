// Package validate checks user input before it reaches the API. Each form
// reports problems per field, keyed by the field's JSON name, so the CLI can
// show them next to the prompt that produced them.
package validate
