// Package token implements compact HMAC-signed payload tokens.
//
// A token is the base64url-encoded JSON payload joined with a truncated
// HMAC-SHA256 signature. Tokens are not encrypted; payloads are readable by
// anyone holding a token, so they must only carry non-secret claims such as
// identifiers and expiry timestamps. Used for password reset links and quote
// share links.
package token
