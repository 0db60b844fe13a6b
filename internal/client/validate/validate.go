package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/guia-app/guia/internal/client/models"
)

// Length limits shared with the API.
const (
	UsernameMin       = 3
	UsernameMax       = 50
	PasswordMin       = 8
	PasswordMax       = 100
	NameMin           = 2
	NameMax           = 50
	CompanyNameMin    = 2
	CompanyNameMax    = 100
	BioMax            = 500
	PostContentMax    = 2000
	ItineraryTitleMax = 200
	ItineraryDescMax  = 5000
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Errors maps a field name to its message. A nil or empty Errors means the
// input is valid.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there are no problems.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.Contains(s, "@") {
			return emailPattern.MatchString(s)
		}
		return len([]rune(s)) >= UsernameMin
	}))
	must(v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		return models.AccountType(fl.Field().String()).Valid()
	}))

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f := sl.Current().Interface().(RegisterForm)
		if f.Type == models.AccountCompany && strings.TrimSpace(f.CompanyName) == "" {
			sl.ReportError(f.CompanyName, "company_name", "CompanyName", "required", "")
		}
	}, RegisterForm{})

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// check runs the struct validator and converts its errors into Errors.
func check(s any) Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{"_": err.Error()}
	}

	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "emailshape":
		return "invalid email"
	case "identifier":
		if strings.Contains(fe.Value().(string), "@") {
			return "invalid email"
		}
		return fmt.Sprintf("username must be at least %d characters", UsernameMin)
	case "username":
		return "username may only contain letters, numbers and underscore"
	case "eqfield":
		return "passwords do not match"
	case "category":
		return "unknown category"
	case "accounttype":
		return "unknown account type"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "url":
		return "invalid URL"
	}
	return "invalid value"
}
