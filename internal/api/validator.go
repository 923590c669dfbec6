package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"mediconnect/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// maxBody caps request bodies; every payload here is a handful of fields.
const maxBody = 1 << 20

// Validate checks go-playground tags and reports failures as a validation
// error naming each offending field.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("%s %s", fieldName(fe), msgForTag(fe)))
		}
		return apperr.Invalid(strings.Join(msgs, "; "))
	}
	return apperr.Internal(err)
}

func fieldName(fe validator.FieldError) string {
	f := fe.Field()
	if f == "" {
		return "field"
	}
	return strings.ToLower(f[:1]) + f[1:]
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	return Validate(dst)
}
