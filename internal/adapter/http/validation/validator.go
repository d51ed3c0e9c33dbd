package validation

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"taskapp/internal/core/model/request"
	"taskapp/internal/core/model/response"
)

const atLeastOneFieldMessage = "At least one field (title or description) must be provided"

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	Validator.RegisterStructValidation(updateTaskStructLevel, request.UpdateTaskRequest{})

	addCustomTranslations()
}

// updateTaskStructLevel rejects an update carrying neither field.
func updateTaskStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(request.UpdateTaskRequest)

	if req.Title == nil && req.Description == nil {
		sl.ReportError(req.Title, "title", "Title", "atleastonefield", "")
	}
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", fe.Field())
		return t
	})

	// min is only used as min=1 on strings, so the message reads as the
	// emptiness rule.
	Validator.RegisterTranslation("min", Translator, func(ut ut.Translator) error {
		return ut.Add("min", "{0} cannot be empty", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("min", fe.Field())
		return t
	})

	Validator.RegisterTranslation("max", Translator, func(ut ut.Translator) error {
		return ut.Add("max", "{0} must be less than {1} characters", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max", fe.Field(), fe.Param())
		return t
	})

	Validator.RegisterTranslation("gte", Translator, func(ut ut.Translator) error {
		return ut.Add("gte", "{0} must be at least {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("gte", fe.Field(), fe.Param())
		return t
	})

	Validator.RegisterTranslation("lte", Translator, func(ut ut.Translator) error {
		return ut.Add("lte", "{0} must be at most {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("lte", fe.Field(), fe.Param())
		return t
	})
}

// FormatValidationErrors flattens validator output into the wire shape,
// one entry per violated constraint.
func FormatValidationErrors(err error) []response.ValidationError {
	var errors []response.ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			if fieldError.Tag() == "atleastonefield" {
				errors = append(errors, response.ValidationError{
					Field:   "",
					Message: atLeastOneFieldMessage,
				})
				continue
			}

			errors = append(errors, response.ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errors
}
