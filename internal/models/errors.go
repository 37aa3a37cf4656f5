package models

import "errors"

// Error classes shared by the bridge. Callers match them with errors.Is.
var (
	// ErrConfig marks a malformed or missing configuration value.
	ErrConfig = errors.New("configuration error")
	// ErrRegistration marks a rejected command registration.
	ErrRegistration = errors.New("command registration failed")
	// ErrInteractionAPI marks a failed message post or acknowledgment.
	ErrInteractionAPI = errors.New("interaction API call failed")
	// ErrNetwork marks a failed wake broadcast.
	ErrNetwork = errors.New("broadcast failed")
)
