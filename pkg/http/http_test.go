package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "skybridge/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "app error",
			err:         apperrors.NotFound("Booking"),
			wantStatus:  http.StatusNotFound,
			wantCode:    apperrors.CodeNotFound,
			wantMessage: "Booking not found",
		},
		{
			name:        "capacity",
			err:         apperrors.CapacityExceeded("No rooms left", nil),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    apperrors.CodeCapacity,
			wantMessage: "No rooms left",
		},
		{
			name:        "plain error is masked",
			err:         errors.New("mongo: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    apperrors.CodeInternal,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError() error = %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error != tt.wantMessage {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMessage)
			}
		})
	}
}

func TestWritePaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WritePaginated(rec, []string{"a"}, 42, 10, 20); err != nil {
		t.Fatalf("WritePaginated() error = %v", err)
	}

	var body PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 42 || body.Limit != 10 || body.Offset != 20 {
		t.Errorf("unexpected pagination: %+v", body)
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"", 10, 0, false},
		{"limit=25&offset=50", 25, 50, false},
		{"limit=1000", 100, 0, false},
		{"offset=-5", 10, 0, false},
		{"limit=abc", 0, 0, true},
		{"offset=1.5", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(req)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractLimitOffset() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Deluxe"}`))
		if err := DecodeJSON(req, &p); err != nil {
			t.Fatalf("DecodeJSON() error = %v", err)
		}
		if p.Name != "Deluxe" {
			t.Errorf("name = %q", p.Name)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		err := DecodeJSON(req, &p)
		if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
			t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		err := DecodeJSON(req, &p)
		if appErr := apperrors.AsAppError(err); appErr.Message != "Invalid request body" {
			t.Errorf("message = %q", appErr.Message)
		}
	})

	t.Run("too large", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a very long room type name"}`))
		req.Body = http.MaxBytesReader(rec, req.Body, 8)
		err := DecodeJSON(req, &p)
		if appErr := apperrors.AsAppError(err); appErr.StatusCode() != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", appErr.StatusCode())
		}
	})
}

func TestDecodeOptionalJSON(t *testing.T) {
	type payload struct {
		Reason string `json:"reason"`
	}

	tests := []struct {
		name       string
		body       io.Reader
		wantReason string
		wantErr    bool
	}{
		{"no body", nil, "", false},
		{"empty body", strings.NewReader(""), "", false},
		{"with body", strings.NewReader(`{"reason":"blurry photos"}`), "blurry photos", false},
		{"malformed", strings.NewReader(`{"reason":`), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			req := httptest.NewRequest(http.MethodPatch, "/", tt.body)
			err := DecodeOptionalJSON(req, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeOptionalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if p.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", p.Reason, tt.wantReason)
			}
		})
	}
}
