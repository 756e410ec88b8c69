// Package handler provides the JSON request/response helpers shared by the
// HTTP modules: encoding responses, decoding size-limited request bodies, and
// flattening validation failures into the API's error shape.
//
// Error responses carry a single top-level message:
//
//	{"error": "Quote ID is required"}
//
// and optionally a per-field breakdown when validation produced one:
//
//	{"error": "validation failed", "details": {"email": ["must be a valid email address"]}}
package handler
