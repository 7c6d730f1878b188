package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a standalone validator that understands the same
// tags as request binding.
func NewValidator() *CustomValidator {
	v := validator.New()
	register(v)
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var registerOnce sync.Once

// RegisterGin installs the custom tags on gin's binding validator.
func RegisterGin() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			register(v)
		}
	})
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	// Registration only fails for empty tags.
	_ = v.RegisterValidation("hhmm", layoutValidator(clockLayout))
	_ = v.RegisterValidation("yyyymmdd", layoutValidator(dateLayout))
}

func layoutValidator(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != len(layout) {
			return false
		}
		_, err := time.Parse(layout, s)
		return err == nil
	}
}

// FormatValidationErrors maps field names to readable messages. It returns
// nil when err is not a validation error.
func FormatValidationErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out[field] = field + " is required"
		case "email":
			out[field] = field + " must be a valid email address"
		case "min":
			out[field] = field + " must be at least " + e.Param()
		case "max":
			out[field] = field + " must be at most " + e.Param()
		case "gt":
			out[field] = field + " must be greater than " + e.Param()
		case "gte":
			out[field] = field + " must be greater than or equal to " + e.Param()
		case "lte":
			out[field] = field + " must be less than or equal to " + e.Param()
		case "oneof":
			out[field] = field + " must be one of: " + e.Param()
		case "ne":
			out[field] = field + " must not be " + e.Param()
		case "hhmm":
			out[field] = field + " must be a time in HH:MM format"
		case "yyyymmdd":
			out[field] = field + " must be a date in YYYY-MM-DD format"
		default:
			out[field] = field + " is invalid"
		}
	}
	return out
}
