package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/skill-pathway/internal/academics"
	"github.com/jonathan/skill-pathway/internal/backend"
	"github.com/jonathan/skill-pathway/internal/onboarding"
	"github.com/jonathan/skill-pathway/internal/recommend"
	"github.com/jonathan/skill-pathway/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		schemaErr     *schemas.ValidationError
		stageErr      *academics.StageError
		catalogErr    *academics.CatalogError
		apiErr        *backend.APICallError
		parseErr      *backend.ParseError
		fieldErrs     validator.ValidationErrors
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr), errors.As(err, &stageErr),
		errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, recommend.ErrEmptyProfile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, onboarding.ErrSkillNotFound):
		return http.StatusNotFound
	case errors.Is(err, onboarding.ErrNoJobSelected), errors.Is(err, onboarding.ErrNoMajorSelected):
		return http.StatusConflict
	case errors.As(err, &catalogErr), errors.As(err, &apiErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the error text returned to clients. Backend failures are reduced to
// the generic user message so response bodies from upstream never leak.
func PublicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadGateway, http.StatusInternalServerError:
		return backend.UserMessage(err)
	default:
		return err.Error()
	}
}
