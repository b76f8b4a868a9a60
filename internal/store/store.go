// Package store persists the onboarding and pathway state of one user as a small set
// of whole JSON values, and reads them back leniently.
package store

import (
	"context"
	"fmt"
)

// Persisted state keys.
const (
	KeyOnboardingProfile = "onboardingData"
	KeySelectedSkills    = "selected_skills_v1"
	KeySelectedJob       = "selected_job_v1"
	KeySelectedMajor     = "selected_major_v1"
	KeyCompleted         = "onboarding_completed_v1"
	KeyLastStep          = "onboarding_last_step_v1"
)

// AllKeys lists every key the engine writes.
var AllKeys = []string{
	KeyOnboardingProfile,
	KeySelectedSkills,
	KeySelectedJob,
	KeySelectedMajor,
	KeyCompleted,
	KeyLastStep,
}

// ProfileStore is a key-value store of raw JSON values. Values are always replaced whole.
type ProfileStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

// DecodeError means a stored value exists but cannot be used.
type DecodeError struct {
	Key   string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stored value for %s is unusable: %v", e.Key, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
