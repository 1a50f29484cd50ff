// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package api

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// maxRequestBodySize caps request bodies. The largest legitimate payload is
// a single search event; anything past this is abuse.
const maxRequestBodySize = 64 * 1024

var validate = validator.New(validator.WithRequiredStructEnabled())

// registerRequest is the POST /api/v1/auth/register body.
type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// loginRequest is the POST /api/v1/auth/login body.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// recordRequest is the POST /api/v1/history/{category} body.
type recordRequest struct {
	Subject string `json:"subject" validate:"required,max=512"`
	Action  string `json:"action" validate:"omitempty,max=64"`
}

// decodeAndValidate decodes the request body into v and runs struct
// validation. On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		rw.BadRequest("malformed JSON body")
		return false
	}

	if err := validate.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := make([]string, 0, len(errs))
			for _, fieldErr := range errs {
				details = append(details, fmt.Sprintf("%s failed %s validation", fieldErr.Field(), fieldErr.Tag()))
			}
			rw.ValidationError("request validation failed", details)
			return false
		}
		rw.BadRequest("invalid request")
		return false
	}
	return true
}
