package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/service"
)

// maxBody bounds request bodies. Logos carry base64 image data.
const maxBody = 32 << 20

// errNotConfigured is returned by endpoints whose collaborator is absent.
var errNotConfigured = errors.New("not configured")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Encode response failed: %v", err)
	}
}

// writeDetail writes an error body in the {"detail": "..."} shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// statusFor maps domain and service errors to HTTP status codes.
func statusFor(err error) int {
	var ge *service.GenerationError
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSaveInProgress), errors.Is(err, service.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.Is(err, imagegen.ErrNoAPIKey), errors.Is(err, errNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &ge):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %d: %v", status, err)
	}
	writeDetail(w, status, err.Error())
}

// decode reads a JSON body into v. Malformed or missing input is a
// validation error.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	present, err := decodeOptional(w, r, v)
	if err != nil {
		return err
	}
	if !present {
		return &domain.ValidationError{Field: "body", Message: "request body is required"}
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be omitted. It
// reports whether a body was present.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) (bool, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return false, &domain.ValidationError{Field: "body", Message: fmt.Sprintf("read body: %v", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &domain.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return true, nil
}
