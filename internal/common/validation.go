package common

import (
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// ValidationDetails flattens validator field errors into the details map
// carried by VALIDATION error responses, keyed by lower-camel field name.
func ValidationDetails(err error) map[string]any {
	details := map[string]any{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[lowerCamel(fe.Field())] = fe.Tag()
		}
	}
	return details
}

func lowerCamel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
