package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/utils"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON
const MaxBodyBytes = 1 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID string `json:"requestId,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		response.Meta = &MetaInfo{RequestID: id}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// DecodeJSON parses a JSON request body into v and runs struct validation.
// Failures are validation errors.
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.NewValidationError("request body is required")
		}
		return pkgerrors.NewValidationError("malformed JSON body").WithCause(err)
	}
	return utils.ValidateStruct(v)
}
