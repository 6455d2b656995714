package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"spacebook/pkg/logger"
	"spacebook/pkg/model"
)

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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fields returns the error list in a shape suitable for AppError
// details.
func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate runs struct-tag validation plus the cross-field rules that
// tags cannot express: exactly one interval payload matching Kind,
// single bookings confined to their event date, multi-night ranges
// strictly forward.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	switch booking.Kind {
	case model.KindSingle:
		return v.validateSingle(booking)
	case model.KindMultiNight:
		return v.validateMultiNight(booking)
	}
	return nil
}

func (v *BookingValidator) validateSingle(booking *model.Booking) error {
	if booking.Single == nil {
		return ValidationErrors{
			ValidationError{Field: "Single", Message: "single booking details are required for kind 'single'"},
		}
	}
	if booking.MultiNight != nil {
		return ValidationErrors{
			ValidationError{Field: "MultiNight", Message: "multi_night details must not be set on a single booking"},
		}
	}

	s := booking.Single
	if !s.EndTime.After(s.StartTime) {
		return ValidationErrors{
			ValidationError{Field: "EndTime", Message: "end_time must be after start_time"},
		}
	}

	y, m, d := s.EventDate.Date()
	sy, sm, sd := s.StartTime.Date()
	if y != sy || m != sm || d != sd {
		return ValidationErrors{
			ValidationError{Field: "StartTime", Message: "start_time must fall on event_date"},
		}
	}

	return nil
}

func (v *BookingValidator) validateMultiNight(booking *model.Booking) error {
	if booking.MultiNight == nil {
		return ValidationErrors{
			ValidationError{Field: "MultiNight", Message: "multi_night booking details are required for kind 'multi_night'"},
		}
	}
	if booking.Single != nil {
		return ValidationErrors{
			ValidationError{Field: "Single", Message: "single details must not be set on a multi_night booking"},
		}
	}

	mn := booking.MultiNight
	if !mn.CheckOutDate.After(mn.CheckInDate) {
		return ValidationErrors{
			ValidationError{Field: "CheckOutDate", Message: "check_out_date must be after check_in_date"},
		}
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
