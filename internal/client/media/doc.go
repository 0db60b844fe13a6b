// Package media checks files picked for upload and stores them, either
// through the API or directly in S3-compatible storage.
package media
