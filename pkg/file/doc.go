// Package file provides blob storage for uploaded product images behind a
// small Storage interface, with an S3 implementation for production and a
// local-filesystem implementation for development and tests.
package file
