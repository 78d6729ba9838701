// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error classes shared by every stage. Concrete errors wrap one of these so
// callers can classify failures with errors.Is.
var (
	// ErrValidation marks input rejected before any work is done.
	ErrValidation = errors.New("validation failed")

	// ErrRetrieval marks an unavailable index or a failed embedding.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrStepExecution marks a pipeline step whose inference call failed.
	ErrStepExecution = errors.New("step execution failed")

	// ErrExternalSource marks a parsing or data-fetch failure.
	ErrExternalSource = errors.New("external source failed")
)
