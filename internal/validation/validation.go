package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names, not Go field names
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s and converts failures into a ValidationFailed error
// carrying one detail per offending field.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.ValidationFailed(fmt.Sprintf("validation failed: %v", err))
	}

	msgs := make([]string, 0, len(ve))
	out := apperr.ValidationFailed("")
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), describe(fe)))
		out.WithDetail(fe.Field(), describe(fe))
	}
	out.Message = strings.Join(msgs, "; ")
	return out
}

func describe(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
