// Package validation checks decoded request bodies with validator/v10 and
// reports failures as coded validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

// PinLength is the number of digits in an admin PIN.
const PinLength = 4

// Validator wraps go-playground/validator with the league's custom tags:
//
//	pin       exactly PinLength ASCII digits
//	gamemode  a known game mode
//	seats     a player list sized for the sibling Mode field
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("pin", validPin)
	_ = v.RegisterValidation("gamemode", validMode)
	_ = v.RegisterValidation("seats", validSeats)

	return &Validator{v: v}
}

// Validate validates a struct and returns a VALIDATION error with per-field details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(err)
	}
	return nil
}

// Var validates a single value against a tag list, for path and query parameters.
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domainerrors.ValidationWithDetails("validation failed",
				map[string]string{field: friendlyMessage(verrs[0])})
		}
		return err
	}
	return nil
}

func formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must not exceed %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "unique":
		return "must not contain duplicates"
	case "pin":
		return fmt.Sprintf("must be exactly %d digits", PinLength)
	case "gamemode":
		return fmt.Sprintf("must be %q or %q", domain.ModeTeams, domain.ModePintintin)
	case "seats":
		return "does not match the number of seats for the mode"
	default:
		return "is invalid"
	}
}

func validPin(fl validator.FieldLevel) bool {
	return IsPin(fl.Field().String())
}

// IsPin reports whether s is exactly PinLength ASCII digits.
func IsPin(s string) bool {
	if len(s) != PinLength {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validMode(fl validator.FieldLevel) bool {
	return domain.Mode(fl.Field().String()).Valid()
}

// validSeats reads the Mode field of the enclosing struct.
func validSeats(fl validator.FieldLevel) bool {
	mode := fl.Parent().FieldByName("Mode")
	if !mode.IsValid() || mode.Kind() != reflect.String {
		return false
	}
	seats := domain.Mode(mode.String()).Seats()
	return seats > 0 && fl.Field().Len() == seats
}
