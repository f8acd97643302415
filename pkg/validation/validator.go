package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Speed bounds in km/h. Manual overrides accept a narrower range than
// measured speeds because a user-typed value has no trip evidence behind it.
const (
	MinWalkSpeedKmh     = 2.0
	MaxWalkSpeedKmh     = 8.0
	MinObservedSpeedKmh = 1.5
	MaxObservedSpeedKmh = 8.0
)

// Validate is the global validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New()
	registerCustom(Validate)

	// gin binds with its own validator instance, so the custom tags have to
	// be registered there as well for binding:"..." tags to work.
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustom(engine)
	}
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("latitude", validateLatitude)
	_ = v.RegisterValidation("longitude", validateLongitude)
	_ = v.RegisterValidation("walk_speed", validateWalkSpeed)
	_ = v.RegisterValidation("observed_speed", validateObservedSpeed)
}

// ValidationError collects per-field validation messages.
type ValidationError struct {
	Errors map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Errors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AddError records a message for a field.
func (e *ValidationError) AddError(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string]string)
	}
	e.Errors[field] = message
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// NewValidationError converts validator.ValidationErrors into our error type.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fieldErr := range errs {
		ve.Errors[strings.ToLower(fieldErr.Field())] = messageFor(fieldErr)
	}
	return ve
}

func messageFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "walk_speed":
		return fmt.Sprintf("must be between %.1f and %.1f km/h", MinWalkSpeedKmh, MaxWalkSpeedKmh)
	case "observed_speed":
		return fmt.Sprintf("must be between %.1f and %.1f km/h", MinObservedSpeedKmh, MaxObservedSpeedKmh)
	default:
		return fmt.Sprintf("failed %s validation", fieldErr.Tag())
	}
}

// ValidateStruct validates a struct and returns a ValidationError on failure
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

func validateLatitude(fl validator.FieldLevel) bool {
	latitude := fl.Field().Float()
	return latitude >= -90.0 && latitude <= 90.0
}

func validateLongitude(fl validator.FieldLevel) bool {
	longitude := fl.Field().Float()
	return longitude >= -180.0 && longitude <= 180.0
}

func validateWalkSpeed(fl validator.FieldLevel) bool {
	speed := fl.Field().Float()
	return speed >= MinWalkSpeedKmh && speed <= MaxWalkSpeedKmh
}

func validateObservedSpeed(fl validator.FieldLevel) bool {
	speed := fl.Field().Float()
	return speed >= MinObservedSpeedKmh && speed <= MaxObservedSpeedKmh
}

// ValidateCoordinates validates a latitude/longitude pair outside of struct
// tag contexts.
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90.0 || latitude > 90.0 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", latitude)
	}
	if longitude < -180.0 || longitude > 180.0 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", longitude)
	}
	return nil
}

// IsValidObservedSpeed reports whether a measured walking speed is plausible
// enough to feed the personalization estimator.
func IsValidObservedSpeed(speedKmh float64) bool {
	return speedKmh >= MinObservedSpeedKmh && speedKmh <= MaxObservedSpeedKmh
}
