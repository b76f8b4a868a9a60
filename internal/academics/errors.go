// Package academics turns O-level and A-level subject/grade rows into skill-level suggestions.
package academics

import "fmt"

// CatalogError is returned when the subject catalog cannot be loaded.
// It blocks the academics step: without subject menus the user cannot proceed.
type CatalogError struct {
	Level string
	Cause error
}

func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("subject catalog unavailable for %s: %v", e.Level, e.Cause)
	}
	return fmt.Sprintf("subject catalog unavailable for %s", e.Level)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// StageError reports an unknown education stage.
type StageError struct {
	Stage string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("unknown education stage %q", e.Stage)
}
