package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Bind decodes the JSON body into target and runs struct validation. An empty
// body leaves target untouched. Field errors are returned keyed by field name.
func Bind(r *http.Request, v *validator.Validate, target any) (map[string]string, error) {
	if err := DecodeJSON(r, target); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrBadRequest, err)
	}
	if err := v.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		fields := make(map[string]string, len(verrs))
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		return fields, ErrValidation
	}
	return nil, nil
}

// RespondBindError writes the response for a failed Bind.
func RespondBindError(w http.ResponseWriter, fields map[string]string, err error) {
	if fields != nil {
		ValidationProblem(w, "invalid request", fields)
		return
	}
	RespondError(w, err)
}
