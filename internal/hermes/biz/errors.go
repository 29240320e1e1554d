package biz

import "errors"

// Sentinel errors for the pipeline. Retrieval and generation failures wrap
// these so callers can distinguish them with errors.Is.
var (
	// ErrConfiguration marks missing or invalid configuration. Fatal at
	// construction time.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrRetrieval marks a vector store failure during retrieval.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration marks a language model failure during answer generation.
	ErrGeneration = errors.New("generation failed")
)
