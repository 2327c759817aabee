package services

import (
	"fmt"
)

// Pipeline error taxonomy. ImageReadError, ExtractionServiceError and
// ExtractionParseError abort the whole ingestion run before anything is
// written. ReconciliationError is per-ingredient and never aborts the batch.
// PersistenceError aborts the remaining persistence stages but never rolls
// back the ones that already committed.

type ImageReadError struct {
	Err error
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("failed to read image: %v", e.Err)
}

func (e *ImageReadError) Unwrap() error { return e.Err }

type ExtractionServiceError struct {
	Err error
}

func (e *ExtractionServiceError) Error() string {
	return fmt.Sprintf("completion service call failed: %v", e.Err)
}

func (e *ExtractionServiceError) Unwrap() error { return e.Err }

type ExtractionParseError struct {
	Reason string
	Err    error
}

func (e *ExtractionParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse extracted recipe: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("could not parse extracted recipe: %s", e.Reason)
}

func (e *ExtractionParseError) Unwrap() error { return e.Err }

type ReconciliationError struct {
	IngredientName string
	Err            error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("failed to reconcile ingredient %q: %v", e.IngredientName, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// Persistence stages, in write order.
const (
	PersistStageRecipe      = "recipe"
	PersistStageIngredients = "ingredients"
	PersistStageSteps       = "steps"
)

type PersistenceError struct {
	Stage string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed at stage %q: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
