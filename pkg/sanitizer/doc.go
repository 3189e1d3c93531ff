// Package sanitizer normalizes user supplied text before validation and
// storage.
//
// All functions are idempotent and never fail: invalid input comes back
// unchanged or empty so the validator can reject it with a proper message.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Emails: trim and lowercase
//   - Booking references: trim and uppercase
package sanitizer
