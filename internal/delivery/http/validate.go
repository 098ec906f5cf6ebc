package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// maxJSONBody caps JSON request bodies at 1 MB. Photo uploads are multipart
// and have their own limit.
const maxJSONBody = 1 << 20

// Validator is implemented by request DTOs. Validate returns a list of
// human-readable problems; empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate reads the JSON body into dest, rejecting unknown fields,
// trailing data, and bodies over the size cap, then runs dest's Validate if
// it has one. On any failure it writes the 400 envelope and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		msg := "invalid request body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			msg = "request body too large"
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		default:
			msg = "invalid request body: " + err.Error()
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return false
	}
	if dec.More() {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "unexpected data after JSON body")
		return false
	}

	if v, ok := dest.(Validator); ok {
		if problems := v.Validate(); len(problems) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(problems, "; "))
			return false
		}
	}
	return true
}
