package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names, not Go ones
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.InvalidArgument("Request body is empty")
		case errors.As(err, &maxErr):
			return apperr.InvalidArgument("Request body too large")
		default:
			return apperr.Wrap(apperr.KindInvalidArgument, "Invalid request body", err)
		}
	}

	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindInvalidArgument, "Invalid request", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.InvalidArgument(fmt.Sprintf("%s is required", fe.Field()))
	default:
		return apperr.InvalidArgument(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
