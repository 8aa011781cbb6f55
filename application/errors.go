package application

import "errors"

// Connector error taxonomy. Connection and token errors are fatal for the
// run; content-type errors are fatal for a single download only.
var (
	// ErrConnection indicates authentication or session setup failed.
	ErrConnection = errors.New("failed to validate connection")

	// ErrMissingContentType indicates a record without the content-type
	// tag needed to choose a retrieval strategy.
	ErrMissingContentType = errors.New("missing sharepoint_content_type metadata")

	// ErrUnknownContentType indicates a tag with no retrieval strategy,
	// including the reserved list type.
	ErrUnknownContentType = errors.New("content type not recognized")
)
