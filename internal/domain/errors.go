package domain

import "errors"

var (
	// ErrBackendUnavailable signals a failed call to the search backend.
	// Retryable by the caller; the gateway performs no automatic retry.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrMalformedResponse signals an undecodable backend response.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrUnexpectedFacetValue signals a facet bucket value of a JSON type
	// other than string or number. Internal fault, not a user error.
	ErrUnexpectedFacetValue = errors.New("unexpected facet value type")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidQuery signals a request that cannot form a valid search.
	ErrInvalidQuery = errors.New("invalid search query")
)
