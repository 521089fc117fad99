// Package provider wraps the external speech-to-text and text-generation
// services. Providers are best-effort collaborators: callers treat their
// output as untrusted and degrade on failure.
package provider

import "errors"

// ErrNotConfigured is returned when a provider is missing credentials.
// Handlers map it to HTTP 501.
var ErrNotConfigured = errors.New("provider not configured")
