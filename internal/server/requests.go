package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// requestValidate checks request bodies after binding
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	if err := requestValidate.RegisterValidation("category", validateCategory); err != nil {
		panic(fmt.Sprintf("register category validation: %v", err))
	}
}

// validateCategory accepts any spelling ParseCategoryID resolves
func validateCategory(fl validator.FieldLevel) bool {
	_, ok := stack.ParseCategoryID(fl.Field().String())
	return ok
}

// stateBody is a configuration as sent by the browser. Each category takes a
// single value or a list; missing categories take their defaults.
type stateBody map[string]models.Values

func (b stateBody) toState() (stack.State, error) {
	return stack.FromMap(models.ToStack(b))
}

type validateRequest struct {
	State stateBody `json:"state" validate:"required"`
	Mode  string    `json:"mode" validate:"omitempty,oneof=fail-fast collect-all first-per-group all group"`
}

type adjustRequest struct {
	State stateBody `json:"state" validate:"required"`
}

type optionsRequest struct {
	State    stateBody `json:"state"`
	Category string    `json:"category" validate:"required,category"`
}

type createSessionRequest struct {
	State stateBody `json:"state"`
}

type selectRequest struct {
	Category string `json:"category" validate:"required,category"`
	Value    string `json:"value" validate:"required,max=64"`
	// Remove deselects Value from a set category instead of adding it
	Remove bool `json:"remove"`
	// Revision, when set, must match the session's current revision
	Revision *int64 `json:"revision" validate:"omitempty,min=0"`
}

type exportQuery struct {
	Name    string `form:"name" validate:"omitempty,max=214,excludesall=/\\"`
	Git     bool   `form:"git"`
	Install bool   `form:"install"`
}

func (r *validateRequest) Validate() error      { return requestValidate.Struct(r) }
func (r *adjustRequest) Validate() error        { return requestValidate.Struct(r) }
func (r *optionsRequest) Validate() error       { return requestValidate.Struct(r) }
func (r *createSessionRequest) Validate() error { return requestValidate.Struct(r) }
func (r *selectRequest) Validate() error        { return requestValidate.Struct(r) }
func (r *exportQuery) Validate() error          { return requestValidate.Struct(r) }
