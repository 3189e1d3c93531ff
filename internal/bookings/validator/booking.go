package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"skybridge/pkg/logger"
	"skybridge/pkg/model"
)

// accepted check-in and check-out layouts, tried in order
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as field to message for an API error body.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// Stay is a validated date range in UTC.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("booking_date", validateBookingDate); err != nil {
		log.Fatal("Failed to register 'booking_date' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func validateBookingDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// ParseDate accepts YYYY-MM-DD or an ISO 8601 timestamp. Timestamps without
// an offset are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: must be YYYY-MM-DD or ISO 8601", s)
}

// ParseStay parses both dates and checks their order.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	var errs ValidationErrors

	in, err := ParseDate(checkIn)
	if err != nil {
		errs = append(errs, ValidationError{Field: "check_in_date", Message: "check_in_date must be in YYYY-MM-DD or ISO 8601 format"})
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		errs = append(errs, ValidationError{Field: "check_out_date", Message: "check_out_date must be in YYYY-MM-DD or ISO 8601 format"})
	}
	if len(errs) > 0 {
		return Stay{}, errs
	}

	if !out.After(in) {
		return Stay{}, ValidationErrors{{
			Field:   "check_out_date",
			Message: "check-out date must be after check-in date",
		}}
	}
	return Stay{CheckIn: in, CheckOut: out}, nil
}

func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) (Stay, error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Stay{}, v.translateValidationErrors(validationErrs)
		}
		return Stay{}, err
	}
	return ParseStay(req.CheckInDate, req.CheckOutDate)
}

// ValidateParty checks the guest count against the room type's occupancy.
func (v *BookingValidator) ValidateParty(rt *model.RoomType, adults, children int) error {
	var errs ValidationErrors
	if adults > rt.MaxAdults {
		errs = append(errs, ValidationError{
			Field:   "adults",
			Message: fmt.Sprintf("room type allows at most %d adults", rt.MaxAdults),
		})
	}
	if children > rt.MaxChildren {
		errs = append(errs, ValidationError{
			Field:   "children",
			Message: fmt.Sprintf("room type allows at most %d children", rt.MaxChildren),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "booking_date":
			message = fmt.Sprintf("%s must be in YYYY-MM-DD or ISO 8601 format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
