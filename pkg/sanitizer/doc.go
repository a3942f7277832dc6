// Package sanitizer normalizes free-text input before validation. It never
// rejects anything, it only cleans: whitespace is collapsed, control
// characters are stripped, and surrounding space is trimmed. Length and
// presence rules stay with the validators.
package sanitizer
