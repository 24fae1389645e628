// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package validation

import (
	"strings"
	"sync"
	"testing"
)

type shelfRequest struct {
	BookID int64  `json:"book_id" validate:"required,gt=0"`
	Shelf  string `json:"shelf" validate:"required,shelf"`
}

type listRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
	Limit  int   `json:"limit" validate:"min=1,max=100"`
}

type profileRequest struct {
	Interests string `json:"interests" validate:"max=10"`
	Internal  string `json:"-" validate:"omitempty,oneof=a b"`
	NoTag     string `validate:"omitempty,min=3"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	results := make(chan interface{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- GetValidator()
		}()
	}
	wg.Wait()
	close(results)

	first := GetValidator()
	for v := range results {
		if v != first {
			t.Fatal("GetValidator() returned different instances")
		}
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  interface{}
	}{
		{name: "favorite shelf", req: &shelfRequest{BookID: 1, Shelf: "favorite"}},
		{name: "want_to_read shelf", req: &shelfRequest{BookID: 9, Shelf: "want_to_read"}},
		{name: "limit bounds", req: &listRequest{UserID: 1, Limit: 100}},
		{name: "optional fields empty", req: &profileRequest{Interests: "poesia"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(tt.req); err != nil {
				t.Errorf("ValidateStruct() error = %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		req         interface{}
		wantField   string
		wantTag     string
		wantMessage string
	}{
		{name: "missing book", req: &shelfRequest{Shelf: "read"}, wantField: "book_id", wantTag: "required", wantMessage: "book_id is required"},
		{name: "unknown shelf", req: &shelfRequest{BookID: 1, Shelf: "wishlist"}, wantField: "shelf", wantTag: "shelf", wantMessage: "shelf must be one of"},
		{name: "negative user", req: &listRequest{UserID: -1, Limit: 10}, wantField: "user_id", wantTag: "gt", wantMessage: "user_id must be greater than 0"},
		{name: "limit too large", req: &listRequest{UserID: 1, Limit: 101}, wantField: "limit", wantTag: "max", wantMessage: "limit must be at most 100"},
		{name: "limit too small", req: &listRequest{UserID: 1, Limit: 0}, wantField: "limit", wantTag: "min", wantMessage: "limit must be at least 1"},
		{name: "string too long", req: &profileRequest{Interests: strings.Repeat("x", 11)}, wantField: "interests", wantTag: "max", wantMessage: "at most 10 characters"},
		{name: "field without json tag", req: &profileRequest{NoTag: "ab"}, wantField: "NoTag", wantTag: "min", wantMessage: "at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.req)
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if !strings.Contains(errs[0].Error(), tt.wantMessage) {
				t.Errorf("Error() = %q, want it to contain %q", errs[0].Error(), tt.wantMessage)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&shelfRequest{BookID: 1, Shelf: "nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != CodeValidationError {
		t.Errorf("Code = %q, want %q", apiErr.Code, CodeValidationError)
	}
	if apiErr.Details["field"] != "shelf" {
		t.Errorf("Details[field] = %v, want shelf", apiErr.Details["field"])
	}
	if apiErr.Details["value"] != "nope" {
		t.Errorf("Details[value] = %v, want nope", apiErr.Details["value"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&shelfRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] type = %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("len(fields) = %d, want 2", len(fields))
	}
	if !strings.Contains(apiErr.Message, "book_id: ") || !strings.Contains(apiErr.Message, "shelf: ") {
		t.Errorf("Message = %q, want both fields listed", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	t.Parallel()

	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != CodeValidationError || apiErr.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v", apiErr)
	}
	if got := (&RequestValidationError{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q", got)
	}
}
