package dispatcherr

// Response is the per-item outcome envelope every batched dispatcher
// operation produces, positionally aligned with its request vector.
type Response struct {
	Status Status
	// Message carries a human-readable detail, typically copied verbatim
	// from a provider's response or a caught exception's message (§7:
	// "the exception message preserved in the textual message field").
	Message string
	// DomainCode carries a provider-specific code, opaque to the core,
	// copied through unmodified on success paths.
	DomainCode string
}

// Success builds a plain success response.
func Success() Response { return Response{Status: StatusSuccess} }

// Err builds an error response with a status and message.
func Err(status Status, message string) Response {
	return Response{Status: status, Message: message}
}

// InternalErrorTripwire is the response the dispatcher installs for every
// target *before* issuing the provider call, so that a provider which never
// resolves or which panics surfaces as StatusInternalError automatically
// rather than leaving the slot at its Go zero value.
func InternalErrorTripwire() Response {
	return Response{Status: StatusInternalError, Message: "no response received from provider"}
}
