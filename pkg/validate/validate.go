// Package validate runs struct-tag validation through go-playground/validator
// and turns failures into a field → message map.
//
// Keys are JSON field names; nested structs use a dotted path
// ("shippingAddress.street"). Only the first failing rule per field is kept.
//
// Besides the stock validator rules, `notblank` rejects strings that are empty
// after trimming whitespace.
//
// Example:
//
//	type Input struct {
//	    Name  string `json:"name"  validate:"notblank,max=100"`
//	    Email string `json:"email" validate:"required,email"`
//	    Role  string `json:"role"  validate:"oneof=customer pharmacy admin"`
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return v
}

// Struct validates s. Returns an empty map when s is valid.
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)

	err := instance().Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: s is not a struct.
		return errs
	}

	for _, fe := range verrs {
		key := fieldPath(fe)
		if _, seen := errs[key]; seen {
			continue
		}
		errs[key] = message(fe, key)
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// First returns one message from errs in a stable order, "" when empty.
func First(errs map[string]string) string {
	best := ""
	for k := range errs {
		if best == "" || k < best {
			best = k
		}
	}
	if best == "" {
		return ""
	}
	return errs[best]
}

func message(fe validator.FieldError, field string) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid. Allowed: %s.", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	case "min":
		if isText(fe.Kind()) {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s must have at least %s items.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s.", field, param)
	case "max":
		if isText(fe.Kind()) {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, param)
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, param)
	case "len":
		return fmt.Sprintf("The %s must be %s characters.", field, param)
	case "hexadecimal":
		return fmt.Sprintf("The %s must be a hexadecimal string.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

func isText(k reflect.Kind) bool { return k == reflect.String }

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}
