package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"skybridge/pkg/config"
	apperrors "skybridge/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// DecodeJSON reads a single JSON document from the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	return decode(r, v, true)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be omitted.
// A missing body leaves v untouched.
func DecodeOptionalJSON(r *http.Request, v any) error {
	return decode(r, v, false)
}

func decode(r *http.Request, v any, required bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if !required {
			return nil
		}
		return apperrors.InvalidInput("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			if !required {
				return nil
			}
			return apperrors.InvalidInput("Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New(apperrors.CodeBadRequest, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
