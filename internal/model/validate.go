package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var reColorHex = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func eventValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("colorhex", func(fl validator.FieldLevel) bool {
			return reColorHex.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("eventid", func(fl validator.FieldLevel) bool {
			return ValidID(fl.Field().String())
		})
		_ = v.RegisterValidation("repeat", func(fl validator.FieldLevel) bool {
			return ValidRepeat(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidationError lists the fields of an event that failed validation.
type ValidationError struct {
	Fields []string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s", strings.Join(e.Fields, ", "))
}

// ValidID reports whether id can name an event. Ids end up in file names (publish), so
// path separators, dot segments and control characters are refused.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." || strings.Contains(id, "..") {
		return false
	}
	for _, r := range id {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Validate checks the invariants a stored event must hold. An empty id passes; stores
// assign one.
func Validate(e CountdownEvent) error {
	err := eventValidator().Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, describeFieldError(fe))
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
	case "colorhex":
		return fmt.Sprintf("color %q must be #RRGGBB", fe.Value())
	case "eventid":
		return fmt.Sprintf("id %q must not contain path separators or ..", fe.Value())
	case "repeat":
		return fmt.Sprintf("repeat %q is not weekly|monthly|yearly or an RRULE", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
