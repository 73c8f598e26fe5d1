package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/frahmantamala/catalog-management/internal"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// shared returns the process wide go-playground validator. Field names are reported
// by their json tag so errors line up with request bodies.
func shared() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

type ValidatorFunc func(interface{}) *apperrors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
	errors []apperrors.ValidationError
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
		errors: make([]apperrors.ValidationError, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

// AddError records a field error found outside the rule chain, such as a store lookup.
func (v *ValidationBuilder) AddError(field, message string, code apperrors.ErrorCode) *ValidationBuilder {
	v.errors = append(v.errors, apperrors.ValidationError{
		Field:   field,
		Message: message,
		Code:    string(code),
	})
	return v
}

// Merge appends the field errors carried by err. Errors without field details are
// recorded against the given fallback field.
func (v *ValidationBuilder) Merge(field string, err *apperrors.AppError) *ValidationBuilder {
	if err == nil {
		return v
	}
	if details := err.FieldErrors(); len(details) > 0 {
		v.errors = append(v.errors, details...)
		return v
	}
	return v.AddError(field, err.Message, err.Code)
}

func requiredError(field string) *apperrors.AppError {
	return apperrors.NewValidationFieldError(field, fmt.Sprintf("%s is required", field), apperrors.ErrCodeValidationFailed)
}

func (fv *FieldValidator) Required() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return requiredError(name)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return requiredError(name)
			}
		case int64:
			if v == 0 {
				return requiredError(name)
			}
		case *float64:
			if v == nil {
				return requiredError(name)
			}
		case *time.Time:
			if v == nil || v.IsZero() {
				return requiredError(name)
			}
		case time.Time:
			if v.IsZero() {
				return requiredError(name)
			}
		case nil:
			return requiredError(name)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		if v, ok := value.(string); ok {
			if utf8.RuneCountInString(v) < min {
				message := fmt.Sprintf("%s must be at least %d characters", name, min)
				return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		if v, ok := value.(string); ok {
			if utf8.RuneCountInString(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", name, max)
				return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Positive() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case *float64:
			if v == nil {
				return nil
			}
			f = *v
		case int64:
			f = float64(v)
		default:
			return nil
		}
		if f <= 0 {
			message := fmt.Sprintf("%s must be positive", name)
			return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeInvalidPrice)
		}
		return nil
	})
	return fv
}

// NotFuture rejects instants after now(). A nil now uses the wall clock.
func (fv *FieldValidator) NotFuture(now func() time.Time) *FieldValidator {
	if now == nil {
		now = time.Now
	}
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		var t time.Time
		switch v := value.(type) {
		case time.Time:
			t = v
		case *time.Time:
			if v == nil {
				return nil
			}
			t = *v
		default:
			return nil
		}
		if t.After(now()) {
			message := fmt.Sprintf("%s cannot be in the future", name)
			return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeInvalidDate)
		}
		return nil
	})
	return fv
}

// Email checks the address format using the "email" rule of go-playground/validator.
func (fv *FieldValidator) Email() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		if err := shared().Var(v, "email"); err != nil {
			message := fmt.Sprintf("%s must be a valid email", name)
			return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// NotEmpty requires a non-empty id list.
func (fv *FieldValidator) NotEmpty() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		if v, ok := value.([]int64); ok && len(v) == 0 {
			message := fmt.Sprintf("%s must contain at least one element", name)
			return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeValidationFailed)
		}
		if value == nil {
			message := fmt.Sprintf("%s must contain at least one element", name)
			return apperrors.NewValidationFieldError(name, message, apperrors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// Validate runs every rule and returns one error listing all failed fields, or nil.
func (v *ValidationBuilder) Validate() *apperrors.AppError {
	validationErrors := append([]apperrors.ValidationError(nil), v.errors...)

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details := appErr.FieldErrors(); len(details) > 0 {
				validationErrors = append(validationErrors, details...)
				continue
			}
			validationErrors = append(validationErrors, apperrors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
			WithDetails(apperrors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// Struct validates the `validate` tags of a request DTO.
func Struct(i interface{}) *apperrors.AppError {
	err := shared().Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.NewValidationError("Invalid request body", apperrors.ErrCodeInvalidRequest)
	}

	fieldErrors := make([]apperrors.ValidationError, 0, len(ve))
	for _, fe := range ve {
		fieldErrors = append(fieldErrors, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Code:    string(apperrors.ErrCodeValidationFailed),
		})
	}
	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: fieldErrors})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
