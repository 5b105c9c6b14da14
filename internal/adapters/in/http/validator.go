package http

import (
	"github.com/go-playground/validator/v10"
)

// requestValidator plugs go-playground/validator into echo's Validate.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// fieldErrors flattens validation errors into "field: tag" pairs.
func fieldErrors(err error) []string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		detail := fe.Field() + ": " + fe.Tag()
		if fe.Param() != "" {
			detail += "=" + fe.Param()
		}
		out = append(out, detail)
	}
	return out
}
