// internal/app/system/inputval/inputval.go
package inputval

import (
	"net/mail"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// phoneRE accepts E.164-style numbers with optional spaces or dashes.
var phoneRE = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Field names in messages come from the label tag, then json, then the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		if j := strings.Split(f.Tag.Get("json"), ",")[0]; j != "" && j != "-" {
			return j
		}
		return f.Name
	})
	_ = v.RegisterValidation("email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	return v
}

// IsValidEmail reports whether s is a bare address (no display name) with
// well-formed local and domain parts. Single-label domains are allowed.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	return dotsOK(local) && dotsOK(domain)
}

func dotsOK(part string) bool {
	return part != "" &&
		!strings.HasPrefix(part, ".") &&
		!strings.HasSuffix(part, ".") &&
		!strings.Contains(part, "..")
}

// IsValidPhone reports whether s looks like a dialable phone number.
func IsValidPhone(s string) bool {
	return phoneRE.MatchString(strings.TrimSpace(s))
}

// Result collects human-readable validation messages in field order.
type Result struct {
	Errors []string
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0]
}

// All joins every message with a space.
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	return strings.Join(r.Errors, " ")
}

// Validate runs the struct's validate tags.
func Validate(v any) *Result {
	res := &Result{}
	err := validate.Struct(v)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, message(fe))
	}
	return res
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required."
	case "max":
		return name + " must be at most " + fe.Param() + " characters."
	case "min":
		return name + " must be at least " + fe.Param() + " characters."
	case "email":
		return "A valid email address is required."
	case "phone":
		return name + " must be a valid phone number."
	case "oneof":
		return name + " must be one of: " + fe.Param() + "."
	case "gt":
		return name + " must be greater than " + fe.Param() + "."
	default:
		return name + " is invalid."
	}
}
