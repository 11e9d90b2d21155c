package validator

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

var (
	global      *validator.Validate
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRegex = regexp.MustCompile(`^\+?[0-9 \-]{10,15}$`)
)

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

const (
	minMobileDigits = 10
	maxMobileDigits = 15
)

// Failure is one rule a field did not satisfy.
type Failure struct {
	Field string
	Tag   string
}

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("simpleemail", validateSimpleEmail)
	_ = v.RegisterValidation("mobile", validateMobile)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func jsonTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateSimpleEmail(fl validator.FieldLevel) bool {
	return IsEmail(fl.Field().String())
}

func validateMobile(fl validator.FieldLevel) bool {
	return IsMobile(fl.Field().String())
}

// IsEmail accepts local@domain.tld with no whitespace anywhere.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsMobile accepts digits with optional spaces or hyphens and one leading plus,
// holding between 10 and 15 digits.
func IsMobile(s string) bool {
	if !mobileRegex.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minMobileDigits && digits <= maxMobileDigits
}

// Check runs every rule on structure and returns all failures in field order.
func Check(ctx context.Context, structure any) []Failure {
	err := Validator().StructCtx(ctx, structure)
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) {
		return []Failure{{Tag: ErrUnknownValidation}}
	}
	out := make([]Failure, 0, len(vErrors))
	for _, ve := range vErrors {
		out = append(out, Failure{Field: ve.Field(), Tag: ve.Tag()})
	}
	return out
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required", "notblank":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "simpleemail", "mobile":
		msg = ErrInvalidFormat
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
