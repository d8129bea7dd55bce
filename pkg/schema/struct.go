package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// structValidate checks `validate` struct tags on document models.
// Field names in errors follow the json tag of each field.
var structValidate *validator.Validate

func init() {
	structValidate = validator.New(validator.WithRequiredStructEnabled())
	structValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	_ = structValidate.RegisterValidation("finite", validateFinite)
}

// validateFinite rejects NaN and infinite floats.
func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return true
}

// ValidateStruct checks the `validate` tags of v and reports every failing
// field as a ValidationError inside an AggregateError.
func ValidateStruct(v any) error {
	err := structValidate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{
			Key:    fieldKey(fe.Namespace()),
			Reason: describeTag(fe.Tag(), fe.Param()),
			Value:  fe.Value(),
		})
	}
	return &AggregateError{Errors: errs}
}

// fieldKey strips the top-level struct name from a validator namespace.
func fieldKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describeTag(tag, param string) string {
	switch tag {
	case "required":
		return "required"
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be at least " + param
	case "lt":
		return "must be less than " + param
	case "lte":
		return "must be at most " + param
	case "min":
		return "must have at least " + param + " elements"
	case "max":
		return "must have at most " + param + " elements"
	case "oneof":
		return "must be one of: " + param
	case "finite":
		return "must be a finite number"
	}
	return fmt.Sprintf("failed %q check", tag)
}
