// Package validation checks registration and casting forms and reports
// problems as an ordered list of user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/audire/casting-portal/internal/model"
)

// DateLayout is the deadline format posted by the casting forms.
const DateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation tag %q: %v", tag, err))
		}
	}
	mustRegister("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister("email_addr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister("strong_password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	mustRegister("role", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseRole(fl.Field().String())
		return ok
	})
	mustRegister("gender", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseGender(fl.Field().String())
		return ok
	})
	mustRegister("category", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseCategory(fl.Field().String())
		return ok
	})
	mustRegister("production_type", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseProductionType(fl.Field().String())
		return ok
	})
	mustRegister("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// StrongPassword reports whether s has at least 8 characters including a
// digit, a lower-case letter, an upper-case letter and a symbol.
func StrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var digit, lower, upper, symbol bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		default:
			symbol = true
		}
	}
	return digit && lower && upper && symbol
}

// Errors is an ordered list of messages. Its order follows the form.
type Errors []string

func (e Errors) Error() string { return strings.Join(e, "; ") }

// check validates s and maps every failing field to its message. Fields are
// reported in declaration order, one message per field.
func check(s any, messages map[string]string) (Errors, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}
	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		msg, ok := messages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = strings.ToLower(fe.Field()) + " is invalid"
		}
		out = append(out, msg)
	}
	return out, nil
}
