package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ccf-policy/core/dataset"
	"ccf-policy/core/policy"
	"ccf-policy/core/render"
	"ccf-policy/core/templates"
)

// ErrorResponse is the payload of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type coded interface {
	Code() string
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeErr maps core errors to a status and a stable code.
func writeErr(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && code == "internal" {
		msg = "internal server error"
	}
	WriteError(w, status, code, msg)
}

func classify(err error) (int, string) {
	var (
		verr    *policy.ValidationError
		missing *render.MissingPlaceholderError
		section *render.UnknownSectionTypeError
		schema  *dataset.SchemaError
		format  *dataset.FormatError
		nofile  *dataset.FileMissingError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Code()
	case errors.Is(err, policy.ErrInvalidFormat):
		return http.StatusBadRequest, "policy.invalid_format"
	case errors.Is(err, policy.ErrConverterUnavailable):
		return http.StatusServiceUnavailable, "policy.converter_unavailable"
	case errors.As(err, &section):
		return http.StatusBadRequest, section.Code()
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, missing.Code()
	case errors.Is(err, templates.ErrTemplateNotFound):
		return http.StatusNotFound, "templates.not_found"
	case errors.Is(err, templates.ErrTemplateExists):
		return http.StatusConflict, "templates.exists"
	case errors.Is(err, templates.ErrBuiltInTemplate):
		return http.StatusForbidden, "templates.built_in"
	case errors.Is(err, templates.ErrInvalidTemplate):
		return http.StatusBadRequest, "templates.invalid"
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge, "request.too_large"
	case errors.As(err, &schema):
		return http.StatusInternalServerError, schema.Code()
	case errors.As(err, &format):
		return http.StatusInternalServerError, format.Code()
	case errors.As(err, &nofile):
		return http.StatusInternalServerError, nofile.Code()
	}
	var c coded
	if errors.As(err, &c) {
		return http.StatusInternalServerError, c.Code()
	}
	return http.StatusInternalServerError, "internal"
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(body)) == "" {
		return &policy.ValidationError{Reason: "empty request body"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &policy.ValidationError{Reason: fmt.Sprintf("malformed json: %v", err)}
	}
	return nil
}
