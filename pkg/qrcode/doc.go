// Package qrcode renders QR codes for quote share links, either as raw PNG
// bytes for image endpoints or as a data URI for embedding in HTML. It wraps
// github.com/skip2/go-qrcode with input validation and a default size.
package qrcode
