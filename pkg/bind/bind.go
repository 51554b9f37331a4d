// Package bind decodes admin JSON bodies and runs struct validation on them.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/afandal/storeadmin/config"
	"github.com/afandal/storeadmin/pkg/validate"
)

var (
	ErrEmptyBody = errors.New("request body is empty")
	ErrTooLarge  = errors.New("request body is too large")
)

// JSON fills dest from r.Body. A decode failure is returned as err; field
// failures come back as errs with a nil err.
func JSON(r *http.Request, dest any) (errs map[string]string, err error) {
	body := http.MaxBytesReader(nil, r.Body, config.MaxJSONBody())
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyBody
		case errors.As(err, &tooLarge):
			return nil, fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, tooLarge.Limit)
		default:
			return nil, fmt.Errorf("malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return nil, errors.New("malformed JSON: trailing data after object")
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
