// Package logger provides slog attribute helpers with consistent keys for
// request dispatch logging. Helpers return an empty Attr for nil or empty
// input, which slog drops silently.
package logger
