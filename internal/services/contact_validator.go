package services

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"agenda/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validation messages shown next to the offending form field.
const (
	MsgRequired      = "Este campo é obrigatório."
	MsgFullNameChars = "O nome completo deve conter apenas letras e espaços."
	MsgPhoneDigits   = "O telefone deve conter apenas números."
	MsgPhoneLength   = "O telefone deve ter entre 10 e 11 dígitos."
	MsgEmailDomain   = "Informe seu e-mail institucional."
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 11
)

var tagMessages = map[string]string{
	"required":      MsgRequired,
	"fullname":      MsgFullNameChars,
	"digits":        MsgPhoneDigits,
	"phonelen":      MsgPhoneLength,
	"email":         MsgEmailDomain,
	"institutional": MsgEmailDomain,
}

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

// Fields returns the names of the failing fields in sorted order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidationError is returned when a submitted contact breaks a field rule.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid contact fields: " + strings.Join(e.Fields.Fields(), ", ")
}

// ContactValidator checks submitted contact forms.
type ContactValidator struct {
	validate *validator.Validate
	domain   string
}

// NewContactValidator creates a validator that accepts only emails under
// the given institutional domain.
func NewContactValidator(domain string) *ContactValidator {
	cv := &ContactValidator{
		validate: validator.New(),
		domain:   strings.ToLower(strings.TrimPrefix(domain, "@")),
	}

	// Report fields by their form names so errors line up with the inputs.
	cv.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = cv.validate.RegisterValidation("fullname", isFullName)
	_ = cv.validate.RegisterValidation("digits", isDigits)
	_ = cv.validate.RegisterValidation("phonelen", isPhoneLength)
	_ = cv.validate.RegisterValidation("institutional", cv.isInstitutionalEmail)

	return cv
}

// Domain returns the institutional email domain.
func (cv *ContactValidator) Domain() string {
	return cv.domain
}

// Normalize trims surrounding whitespace from every field.
func Normalize(form models.ContactForm) models.ContactForm {
	return models.ContactForm{
		FullName: strings.TrimSpace(form.FullName),
		Phone:    strings.TrimSpace(form.Phone),
		Email:    strings.TrimSpace(form.Email),
		Note:     strings.TrimSpace(form.Note),
	}
}

// Validate returns the field errors of form, or nil when every rule passes.
// Rules of a single field stop at the first failure.
func (cv *ContactValidator) Validate(form models.ContactForm) FieldErrors {
	err := cv.validate.Struct(Normalize(form))
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{"__all__": {err.Error()}}
	}

	fieldErrors := make(FieldErrors)
	for _, e := range validationErrors {
		msg, ok := tagMessages[e.Tag()]
		if !ok {
			msg = "Valor inválido."
		}
		fieldErrors[e.Field()] = append(fieldErrors[e.Field()], msg)
	}
	return fieldErrors
}

func isFullName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r != ' ' && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isDigits(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isPhoneLength(fl validator.FieldLevel) bool {
	n := len(fl.Field().String())
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

func (cv *ContactValidator) isInstitutionalEmail(fl validator.FieldLevel) bool {
	email := fl.Field().String()
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	return strings.EqualFold(email[at+1:], cv.domain)
}
