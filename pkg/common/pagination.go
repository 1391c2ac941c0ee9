package common

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	pkgerrors "clubhub-backend/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest carries cursor pagination parameters
type PageRequest struct {
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// EffectiveLimit applies the default and the hard cap
func (p PageRequest) EffectiveLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultPageSize
	case p.Limit > MaxPageSize:
		return MaxPageSize
	}
	return p.Limit
}

// Page is one page of results
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// EncodeCursor renders a cursor value as opaque base64 JSON
func EncodeCursor(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// DecodeCursor parses a cursor produced by EncodeCursor. Failures are
// INVALID_CURSOR validation errors.
func DecodeCursor(cursor string, v interface{}) error {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return pkgerrors.NewInvalidCursorError(err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return pkgerrors.NewInvalidCursorError(err)
	}
	return nil
}

// ExtractPageRequest reads limit and cursor query parameters
func ExtractPageRequest(r *http.Request) PageRequest {
	q := r.URL.Query()
	req := PageRequest{Cursor: q.Get("cursor")}
	if limit := q.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			req.Limit = l
		}
	}
	return req
}
