// Package quotes implements quote creation, retrieval, share QR codes, and
// the engagement-tracking endpoints. A quote prices a quantity of one
// catalog product; view and share events are appended to an event log for
// later analysis.
package quotes
